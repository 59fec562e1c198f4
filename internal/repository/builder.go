package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/internal/graph"
	"github.com/KostasZigo/rgit/internal/index"
	"github.com/KostasZigo/rgit/internal/objects"
	"github.com/KostasZigo/rgit/utils"
)

var (
	// ErrNothingToCommit is returned by Commit when the index is empty.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrNoAuthor is returned by Commit when no author is given and none is configured.
	ErrNoAuthor = errors.New("no author given and user.name is not configured")

	// ErrUnknownRevision is returned when a name resolves to neither a ref nor a hash.
	ErrUnknownRevision = errors.New("unknown revision")
)

// WriteTree stores a flat tree with one blob entry per index entry and returns its hash.
func (r *Repository) WriteTree() (string, error) {
	idx, err := index.Load(r.IndexPath())
	if err != nil {
		return "", err
	}
	return r.writeTree(idx)
}

func (r *Repository) writeTree(idx *index.Index) (string, error) {
	entries := make([]objects.TreeEntry, 0, idx.Len())
	for _, staged := range idx.Entries() {
		entry, err := objects.NewBlobEntry(staged.Path, staged.Hash)
		if err != nil {
			slog.Warn("Skipping malformed index entry",
				"path", staged.Path,
				"hash", staged.Hash,
				"error", err)
			continue
		}
		entries = append(entries, *entry)
	}

	tree, err := objects.NewTree(entries)
	if err != nil {
		return "", err
	}
	if err := r.objects.Store(tree); err != nil {
		return "", fmt.Errorf("failed to store tree: %w", err)
	}

	slog.Debug("Wrote tree",
		"hash", tree.Hash(),
		"entries", len(entries))
	return tree.Hash(), nil
}

// CommitTree stores a commit over treeHash. An empty parentHash makes a root commit.
func (r *Repository) CommitTree(message, author, treeHash, parentHash string) (string, error) {
	commit, err := objects.NewCommit(treeHash, []string{parentHash}, author, message)
	if err != nil {
		return "", err
	}
	if err := r.objects.Store(commit); err != nil {
		return "", fmt.Errorf("failed to store commit: %w", err)
	}
	return commit.Hash(), nil
}

// Author returns author when set, otherwise the configured user.
func (r *Repository) Author(author string) (string, error) {
	if author != "" {
		return author, nil
	}
	if configured, ok := r.config.Author(); ok {
		return configured, nil
	}
	return "", ErrNoAuthor
}

// CommitResult describes a commit made by Commit.
type CommitResult struct {
	Hash   string
	Parent string
	Ref    string
}

// Commit turns the index into a tree, commits it on top of HEAD, advances
// the ref HEAD resolves to and clears the index.
func (r *Repository) Commit(message, author string) (CommitResult, error) {
	idx, err := index.Load(r.IndexPath())
	if err != nil {
		return CommitResult{}, err
	}
	if idx.IsEmpty() {
		return CommitResult{}, ErrNothingToCommit
	}

	author, err = r.Author(author)
	if err != nil {
		return CommitResult{}, err
	}

	treeHash, err := r.writeTree(idx)
	if err != nil {
		return CommitResult{}, err
	}

	head, err := r.refs.ResolveHead()
	if err != nil {
		return CommitResult{}, err
	}

	hash, err := r.CommitTree(message, author, treeHash, head.Hash)
	if err != nil {
		return CommitResult{}, err
	}

	// Target is the branch when HEAD is symbolic and HEAD itself when detached
	if err := r.refs.UpdateRef(head.Target, hash); err != nil {
		return CommitResult{}, err
	}

	idx.Clear()
	if err := idx.Save(); err != nil {
		return CommitResult{}, err
	}

	slog.Debug("Created commit",
		"hash", hash,
		"parent", head.Hash,
		"ref", head.Target)
	return CommitResult{Hash: hash, Parent: head.Hash, Ref: head.Target}, nil
}

// ResolveRevision turns HEAD, a ref name, a branch, a tag or a full hash into a commit hash.
func (r *Repository) ResolveRevision(revision string) (string, error) {
	if revision == constants.Head {
		head, err := r.refs.ResolveHead()
		if err != nil {
			return "", err
		}
		if head.Hash == "" {
			return "", fmt.Errorf("%w: %s has no commits yet", ErrUnknownRevision, head.Target)
		}
		return head.Hash, nil
	}

	candidates := []string{
		constants.Refs + "/" + revision,
		constants.Refs + "/" + constants.Heads + "/" + revision,
		constants.Refs + "/" + constants.Tags + "/" + revision,
	}
	if strings.HasPrefix(revision, constants.Refs+"/") {
		candidates = append([]string{revision}, candidates...)
	}
	for _, name := range candidates {
		if !r.refs.Exists(name) {
			continue
		}
		resolution, err := r.refs.Resolve(name)
		if err != nil {
			return "", err
		}
		if resolution.Hash != "" {
			return resolution.Hash, nil
		}
	}

	if utils.IsValidHash(revision) {
		return revision, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownRevision, revision)
}

// Log returns the first-parent history of revision, newest first.
// An empty revision means HEAD; a branch with no commits yields an empty log.
func (r *Repository) Log(revision string) ([]*objects.Commit, error) {
	if revision == "" || revision == constants.Head {
		head, err := r.refs.ResolveHead()
		if err != nil {
			return nil, err
		}
		if head.Hash == "" {
			return nil, nil
		}
		return graph.History(r.objects, head.Hash)
	}

	hash, err := r.ResolveRevision(revision)
	if err != nil {
		return nil, err
	}
	return graph.History(r.objects, hash)
}
