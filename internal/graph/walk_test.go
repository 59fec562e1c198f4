package graph

import (
	"testing"

	"github.com/KostasZigo/rgit/internal/objects"
	"github.com/KostasZigo/rgit/testutils"
	"github.com/KostasZigo/rgit/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryReader serves hand-crafted objects without hash verification,
// which lets tests build shapes a real store cannot hold.
type memoryReader map[string]*objects.RawObject

func (m memoryReader) Read(hash string) (*objects.RawObject, error) {
	object, ok := m[hash]
	if !ok {
		return nil, &objects.NotFoundError{Hash: hash}
	}
	return object, nil
}

func (m memoryReader) put(hash string, objectType utils.ObjectType, content string) {
	m[hash] = &objects.RawObject{Hash: hash, Type: objectType, Content: []byte(content)}
}

type commitFixture struct {
	commit *objects.Commit
	tree   *objects.Tree
	blob   *objects.Blob
}

// storeCommit writes a blob, a one-entry tree over it and a commit on top.
func storeCommit(t *testing.T, store *objects.ObjectStore, content string, parents ...string) commitFixture {
	t.Helper()

	blob := objects.NewBlob([]byte(content))
	require.NoError(t, store.Store(blob))

	entry, err := objects.NewBlobEntry("file.txt", blob.Hash())
	require.NoError(t, err)
	tree, err := objects.NewTree([]objects.TreeEntry{*entry})
	require.NoError(t, err)
	require.NoError(t, store.Store(tree))

	commit, err := objects.NewCommit(tree.Hash(), parents, "tester", "commit "+content)
	require.NoError(t, err)
	require.NoError(t, store.Store(commit))

	return commitFixture{commit: commit, tree: tree, blob: blob}
}

func TestCollectObjects_LinearChain(t *testing.T) {
	store := objects.NewObjectStore(testutils.SetupTestRepoWithRgitDir(t))

	c1 := storeCommit(t, store, "one")
	c2 := storeCommit(t, store, "two", c1.commit.Hash())
	c3 := storeCommit(t, store, "three", c2.commit.Hash())

	collected, err := CollectObjects(store, c3.commit.Hash())
	require.NoError(t, err)

	expected := NewHashSet()
	for _, fixture := range []commitFixture{c1, c2, c3} {
		expected.Add(fixture.commit.Hash())
		expected.Add(fixture.tree.Hash())
		expected.Add(fixture.blob.Hash())
	}
	assert.Equal(t, expected, collected)
	assert.Equal(t, 9, collected.Len())
}

func TestCollectObjects_SharedObjectsDeduplicated(t *testing.T) {
	store := objects.NewObjectStore(testutils.SetupTestRepoWithRgitDir(t))

	// Both commits point at the same tree and blob
	c1 := storeCommit(t, store, "same")
	c2 := storeCommit(t, store, "same", c1.commit.Hash())
	require.Equal(t, c1.tree.Hash(), c2.tree.Hash())

	collected, err := CollectObjects(store, c2.commit.Hash())
	require.NoError(t, err)
	assert.Equal(t, NewHashSet(c1.commit.Hash(), c2.commit.Hash(), c1.tree.Hash(), c1.blob.Hash()), collected)
}

func TestCollectObjects_DiamondHistory(t *testing.T) {
	store := objects.NewObjectStore(testutils.SetupTestRepoWithRgitDir(t))

	base := storeCommit(t, store, "base")
	left := storeCommit(t, store, "left", base.commit.Hash())
	right := storeCommit(t, store, "right", base.commit.Hash())
	merge := storeCommit(t, store, "merge", left.commit.Hash(), right.commit.Hash())

	collected, err := CollectObjects(store, merge.commit.Hash())
	require.NoError(t, err)
	assert.Equal(t, 12, collected.Len())
	assert.True(t, collected.Has(base.blob.Hash()))
}

func TestCollectObjects_SelfParentTerminates(t *testing.T) {
	reader := memoryReader{}
	self := testutils.RandomHash()
	tree := testutils.RandomHash()
	blob := testutils.RandomHash()

	reader.put(self, utils.CommitObjectType, "tree "+tree+"\nparent "+self+"\nauthor me\n\nloop\n")
	reader.put(tree, utils.TreeObjectType, "100644 blob "+blob+" a.txt\n")
	reader.put(blob, utils.BlobObjectType, "author looks like a commit line\n")

	collected, err := CollectObjects(reader, self)
	require.NoError(t, err)
	assert.Equal(t, NewHashSet(self, tree, blob), collected)
}

func TestCollectObjects_TreeCycleTerminates(t *testing.T) {
	reader := memoryReader{}
	a := testutils.RandomHash()
	b := testutils.RandomHash()

	reader.put(a, utils.TreeObjectType, "040000 tree "+b+" sub\n")
	reader.put(b, utils.TreeObjectType, "040000 tree "+a+" back\n")

	collected, err := CollectObjects(reader, a)
	require.NoError(t, err)
	assert.Equal(t, NewHashSet(a, b), collected)
}

func TestCollectObjects_DanglingReference(t *testing.T) {
	reader := memoryReader{}
	commit := testutils.RandomHash()
	missingTree := testutils.RandomHash()
	reader.put(commit, utils.CommitObjectType, "tree "+missingTree+"\nauthor me\n\nmsg\n")

	_, err := CollectObjects(reader, commit)
	require.ErrorIs(t, err, objects.ErrObjectNotFound)
	assert.Contains(t, err.Error(), missingTree)
}

func TestHistory_FirstParentChain(t *testing.T) {
	store := objects.NewObjectStore(testutils.SetupTestRepoWithRgitDir(t))

	c1 := storeCommit(t, store, "one")
	c2 := storeCommit(t, store, "two", c1.commit.Hash())
	c3 := storeCommit(t, store, "three", c2.commit.Hash())

	history, err := History(store, c3.commit.Hash())
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, c3.commit.Hash(), history[0].Hash())
	assert.Equal(t, c2.commit.Hash(), history[1].Hash())
	assert.Equal(t, c1.commit.Hash(), history[2].Hash())
}

func TestHistory_SelfParentTerminates(t *testing.T) {
	reader := memoryReader{}
	self := testutils.RandomHash()
	reader.put(self, utils.CommitObjectType, "tree "+testutils.RandomHash()+"\nparent "+self+"\nauthor me\n\nloop\n")

	history, err := History(reader, self)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHistory_NotACommit(t *testing.T) {
	reader := memoryReader{}
	blob := testutils.RandomHash()
	reader.put(blob, utils.BlobObjectType, "data")

	_, err := History(reader, blob)
	assert.ErrorIs(t, err, objects.ErrMalformedObject)
}

func TestHashSet_Operations(t *testing.T) {
	a := NewHashSet("1", "2", "3")
	b := NewHashSet("2", "3", "4")

	assert.Equal(t, NewHashSet("1"), a.Difference(b))
	assert.Equal(t, NewHashSet("2", "3"), a.Intersect(b))
	assert.Equal(t, NewHashSet("1", "2", "3", "4"), a.Union(b))
	assert.Equal(t, []string{"1", "2", "3"}, a.Sorted())
}
