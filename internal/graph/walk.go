// Package graph walks the commit -> tree -> blob object graph.
//
// Walks use an explicit stack and a visited set, never recursion, so deep
// histories cannot exhaust the goroutine stack and cyclic (corrupt) input
// still terminates.
package graph

import (
	"fmt"
	"log/slog"

	"github.com/KostasZigo/rgit/internal/objects"
	"github.com/KostasZigo/rgit/utils"
)

// Reader loads decoded objects by hash. The local object store implements it,
// and so does a transport-backed view of another repository.
type Reader interface {
	Read(hash string) (*objects.RawObject, error)
}

// CollectObjects returns every object reachable from root, root included.
// A referenced object that cannot be read fails the walk with the read error,
// so a dangling reference surfaces as objects.ErrObjectNotFound.
func CollectObjects(reader Reader, root string) (HashSet, error) {
	visited := make(HashSet)
	toVisit := []string{root}

	for len(toVisit) > 0 {
		current := toVisit[len(toVisit)-1]
		toVisit = toVisit[:len(toVisit)-1]

		if visited.Has(current) {
			continue
		}
		visited.Add(current)

		object, err := reader.Read(current)
		if err != nil {
			return nil, fmt.Errorf("collect objects from %s: %w", root, err)
		}

		children, err := childHashes(object)
		if err != nil {
			return nil, fmt.Errorf("collect objects from %s: %w", root, err)
		}
		toVisit = append(toVisit, children...)
	}

	slog.Debug("Collected reachable objects",
		"root", root,
		"count", visited.Len())
	return visited, nil
}

// childHashes lists what an object points to: tree and parents for a commit,
// every entry for a tree, nothing for a blob.
func childHashes(object *objects.RawObject) ([]string, error) {
	switch object.Type {
	case utils.CommitObjectType:
		commit, err := objects.ParseCommit(object.Hash, object.Content)
		if err != nil {
			return nil, err
		}
		children := make([]string, 0, 1+len(commit.Parents()))
		children = append(children, commit.TreeHash())
		return append(children, commit.Parents()...), nil

	case utils.TreeObjectType:
		tree, err := objects.ParseTree(object.Hash, object.Content)
		if err != nil {
			return nil, err
		}
		children := make([]string, 0, len(tree.Entries()))
		for _, entry := range tree.Entries() {
			children = append(children, entry.Hash())
		}
		return children, nil

	default:
		return nil, nil
	}
}

// History returns the first-parent chain starting at head, newest first.
// A commit seen twice ends the chain, so a commit naming itself as parent is harmless.
func History(reader Reader, head string) ([]*objects.Commit, error) {
	var history []*objects.Commit
	seen := make(HashSet)

	for current := head; current != ""; {
		if seen.Has(current) {
			slog.Warn("Commit history loops back on itself",
				"commit", current)
			break
		}
		seen.Add(current)

		commit, err := readCommit(reader, current)
		if err != nil {
			return nil, err
		}
		history = append(history, commit)
		current = commit.FirstParent()
	}

	return history, nil
}

func readCommit(reader Reader, hash string) (*objects.Commit, error) {
	object, err := reader.Read(hash)
	if err != nil {
		return nil, err
	}
	if object.Type != utils.CommitObjectType {
		return nil, fmt.Errorf("%w: %s is a %s, not a commit", objects.ErrMalformedObject, hash, object.Type)
	}
	return objects.ParseCommit(hash, object.Content)
}
