// Package sync copies reachable objects between repositories.
//
// The planner only compares hashes: it never inspects object bytes on the
// other side, so an object present under the right name is trusted.
// Transfers are verified on the receiving local store, which re-hashes
// everything it is given.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/internal/graph"
	"github.com/KostasZigo/rgit/internal/objects"
	"github.com/KostasZigo/rgit/internal/refs"
)

// Presence answers whether a repository already holds an object.
// *objects.ObjectStore satisfies it by testing each object's path.
type Presence interface {
	Has(hash string) (bool, error)
}

// TransportPresence lists the remote once and answers from that listing.
type TransportPresence struct {
	transport ObjectTransport
	listed    graph.HashSet
}

func NewTransportPresence(transport ObjectTransport) *TransportPresence {
	return &TransportPresence{transport: transport}
}

func (p *TransportPresence) Has(hash string) (bool, error) {
	if p.listed == nil {
		hashes, err := p.transport.List()
		if err != nil {
			return false, fmt.Errorf("failed to list remote objects: %w", err)
		}
		p.listed = graph.NewHashSet(hashes...)
	}
	return p.listed.Has(hash), nil
}

// MissingObjects returns the hashes of wanted that presence does not hold.
func MissingObjects(presence Presence, wanted graph.HashSet) (graph.HashSet, error) {
	missing := graph.NewHashSet()
	for hash := range wanted {
		ok, err := presence.Has(hash)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing.Add(hash)
		}
	}
	return missing, nil
}

// Repository is the local side of a transfer.
type Repository interface {
	Objects() *objects.ObjectStore
	Refs() *refs.Store
}

// Result summarizes one push or fetch.
type Result struct {
	// Ref is the ref written on the receiving side.
	Ref string

	// Commit is the branch tip that was transferred.
	Commit string

	// Reachable counts every object reachable from Commit.
	Reachable int

	// Transferred counts the objects that were copied.
	Transferred int
}

// Push sends the closure of refs/<branch> to the remote and moves the
// remote's refs/<branch> to the local tip.
func Push(ctx context.Context, local Repository, transport ObjectTransport, branch string) (Result, error) {
	ref := constants.Refs + "/" + branch

	resolution, err := local.Refs().Resolve(ref)
	if err != nil {
		return Result{}, err
	}
	if resolution.Hash == "" {
		return Result{}, fmt.Errorf("%w: %s", refs.ErrRefNotFound, ref)
	}

	reachable, err := graph.CollectObjects(local.Objects(), resolution.Hash)
	if err != nil {
		return Result{}, err
	}

	missing, err := MissingObjects(NewTransportPresence(transport), reachable)
	if err != nil {
		return Result{}, err
	}

	for _, hash := range missing.Sorted() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		data, err := local.Objects().ReadCompressed(hash)
		if err != nil {
			return Result{}, err
		}
		if err := transport.Put(hash, data); err != nil {
			return Result{}, err
		}
		slog.Debug("Pushed object",
			"hash", hash)
	}

	if err := transport.UpdateRef(ref, resolution.Hash); err != nil {
		return Result{}, fmt.Errorf("failed to update remote %s: %w", ref, err)
	}

	return Result{
		Ref:         ref,
		Commit:      resolution.Hash,
		Reachable:   reachable.Len(),
		Transferred: missing.Len(),
	}, nil
}

// Fetch copies the closure of the remote refs/<branch> into the local store
// and records the tip as refs/remotes/<branch>.
func Fetch(ctx context.Context, local Repository, transport ObjectTransport, branch string) (Result, error) {
	remoteRef := constants.Refs + "/" + branch

	tip, err := transport.ReadRef(remoteRef)
	if err != nil {
		return Result{}, err
	}
	if tip == "" {
		return Result{}, fmt.Errorf("%w: remote %s", refs.ErrRefNotFound, remoteRef)
	}

	reader := &localFirstReader{local: local.Objects(), remote: NewTransportReader(transport)}
	reachable, err := graph.CollectObjects(reader, tip)
	if err != nil {
		return Result{}, err
	}

	missing, err := MissingObjects(local.Objects(), reachable)
	if err != nil {
		return Result{}, err
	}

	for _, hash := range missing.Sorted() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		data, err := transport.Fetch(hash)
		if err != nil {
			return Result{}, err
		}
		if err := local.Objects().StoreRaw(hash, data); err != nil {
			return Result{}, err
		}
		slog.Debug("Fetched object",
			"hash", hash)
	}

	localRef := constants.Refs + "/" + constants.Remotes + "/" + branch
	if err := local.Refs().UpdateRef(localRef, tip); err != nil {
		return Result{}, err
	}

	return Result{
		Ref:         localRef,
		Commit:      tip,
		Reachable:   reachable.Len(),
		Transferred: missing.Len(),
	}, nil
}

// localFirstReader reads from the local store and falls back to the remote
// for objects the local store lacks.
type localFirstReader struct {
	local  *objects.ObjectStore
	remote *TransportReader
}

func (r *localFirstReader) Read(hash string) (*objects.RawObject, error) {
	object, err := r.local.Read(hash)
	if errors.Is(err, objects.ErrObjectNotFound) {
		return r.remote.Read(hash)
	}
	return object, err
}
