package objects

import (
	"testing"

	"github.com/KostasZigo/rgit/testutils"
	"github.com/KostasZigo/rgit/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates an object store rooted in a fresh temp repository.
func newTestStore(t *testing.T) (*ObjectStore, string) {
	t.Helper()

	repoPath := testutils.SetupTestRepoWithRgitDir(t)
	return NewObjectStore(repoPath), repoPath
}

// assertBlobHash verifies blob hash matches expected value for given content.
func assertBlobHash(t *testing.T, blob *Blob, content []byte) {
	t.Helper()

	expectedHash, err := utils.ComputeHash(content, utils.BlobObjectType)
	require.NoError(t, err)
	require.Equal(t, expectedHash, blob.Hash())
}

// assertBlobContent verifies blob stores exact content and correct size.
func assertBlobContent(t *testing.T, blob *Blob, expectedContent []byte) {
	t.Helper()

	require.Equal(t, len(expectedContent), blob.Size())
	require.Equal(t, string(expectedContent), string(blob.Content()))
}

// createBlobEntry creates a regular-file tree entry and fails test on error.
func createBlobEntry(t *testing.T, name, hash string) TreeEntry {
	t.Helper()

	entry, err := NewBlobEntry(name, hash)
	require.NoError(t, err)

	return *entry
}

// createTree creates tree from entries and fails test on error.
func createTree(t *testing.T, entries []TreeEntry) *Tree {
	t.Helper()

	tree, err := NewTree(entries)
	require.NoError(t, err)

	return tree
}

// createAndStoreTree creates tree from entries, stores it, and returns tree.
func createAndStoreTree(t *testing.T, store *ObjectStore, entries []TreeEntry) *Tree {
	t.Helper()

	tree := createTree(t, entries)
	require.NoError(t, store.Store(tree))

	return tree
}

// assertTreeEntryEqual verifies two tree entries match.
func assertTreeEntryEqual(t *testing.T, actual, expected TreeEntry) {
	t.Helper()

	assert.Equal(t, expected.Name(), actual.Name(), "entry name")
	assert.Equal(t, expected.Hash(), actual.Hash(), "entry hash")
	assert.Equal(t, expected.Mode(), actual.Mode(), "entry mode")
	assert.Equal(t, expected.Type(), actual.Type(), "entry type")
}

// createAndStoreCommit creates commit with random tree and message, stores it, and returns commit.
func createAndStoreCommit(t *testing.T, store *ObjectStore, parents ...string) *Commit {
	t.Helper()

	commit, err := NewCommit(testutils.RandomHash(), parents, testutils.RandomString(10), testutils.RandomString(50))
	require.NoError(t, err)
	require.NoError(t, store.Store(commit))

	return commit
}

// assertCommitEqual verifies two commits match in all fields.
func assertCommitEqual(t *testing.T, actual, expected *Commit) {
	t.Helper()

	assert.Equal(t, expected.hash, actual.hash, "hash")
	assert.Equal(t, expected.treeHash, actual.treeHash, "tree hash")
	require.Len(t, actual.parents, len(expected.parents), "parent count")
	for i := range expected.parents {
		assert.Equal(t, expected.parents[i], actual.parents[i], "parent %d", i)
	}
	assert.Equal(t, expected.message, actual.message, "message")
	assert.Equal(t, expected.author, actual.author, "author")
}
