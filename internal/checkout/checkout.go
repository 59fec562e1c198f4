// Package checkout reconciles the working directory with the files of a commit.
//
// A checkout is computed as a Plan before anything on disk changes: the
// target file set is built and every blob it needs is loaded, so a missing
// object fails the checkout while the working tree is still untouched.
// Apply then removes what the target lacks and writes what differs. Apply is
// not transactional. If it fails partway, the working tree is left partially
// updated and the returned *ApplyError says how far it got.
//
// Trees are flat: subtree entries are skipped. A single writer per
// repository is assumed.
package checkout

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/internal/graph"
	"github.com/KostasZigo/rgit/internal/objects"
	"github.com/KostasZigo/rgit/internal/refs"
	"github.com/KostasZigo/rgit/utils"
)

// ErrUnsafePath is returned when a tree entry name would be written outside the working directory.
var ErrUnsafePath = errors.New("unsafe path in tree")

// Mode selects how the target file set is built.
type Mode int

const (
	// ModeSnapshot restores exactly the tree of the target commit.
	ModeSnapshot Mode = iota

	// ModeReplay layers the trees of the first-parent chain oldest first,
	// so files from older commits survive unless a later commit rewrites them.
	ModeReplay
)

func (m Mode) String() string {
	switch m {
	case ModeSnapshot:
		return "snapshot"
	case ModeReplay:
		return "replay"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ActionKind is what Apply does to one path.
type ActionKind int

const (
	ActionKeep ActionKind = iota
	ActionRemove
	ActionAdd
	ActionReplace
)

func (k ActionKind) String() string {
	switch k {
	case ActionKeep:
		return "keep"
	case ActionRemove:
		return "remove"
	case ActionAdd:
		return "add"
	case ActionReplace:
		return "replace"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is one planned change. Path is slash separated and relative to the working directory.
type Action struct {
	Kind ActionKind
	Path string
	Hash string

	content []byte
}

// Target is a resolved checkout target.
type Target struct {
	// Name is what the caller asked for.
	Name string

	// Commit is the commit hash the name resolved to.
	Commit string

	// Ref is the ref the name resolved through, or "" for a literal commit hash.
	Ref string
}

// Detached reports whether HEAD will hold a raw hash after checkout.
func (t Target) Detached() bool {
	return t.Ref == ""
}

// Plan is a computed checkout. File removals come first, sorted by path, then
// removals of directories holding no files, deepest first, then writes sorted by path.
type Plan struct {
	Target  Target
	Mode    Mode
	Actions []Action
}

// Count returns how many actions of kind the plan holds.
func (p *Plan) Count(kind ActionKind) int {
	n := 0
	for _, action := range p.Actions {
		if action.Kind == kind {
			n++
		}
	}
	return n
}

// Changes returns the actions that touch the disk.
func (p *Plan) Changes() []Action {
	var changes []Action
	for _, action := range p.Actions {
		if action.Kind != ActionKeep {
			changes = append(changes, action)
		}
	}
	return changes
}

// ApplyError reports a failed Apply. The working tree holds the effect of
// the first Completed changes and nothing of the rest.
type ApplyError struct {
	Completed int
	Action    Action
	Err       error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("checkout stopped after %d change(s): %s %s: %v", e.Completed, e.Action.Kind, e.Action.Path, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// Engine checks commits out into one working directory.
type Engine struct {
	root    string
	objects *objects.ObjectStore
	refs    *refs.Store
}

func New(root string, store *objects.ObjectStore, refStore *refs.Store) *Engine {
	return &Engine{root: filepath.Clean(root), objects: store, refs: refStore}
}

// ResolveTarget maps target to a commit: refs/<target> first, then
// refs/heads/<target>, otherwise target itself as a commit hash.
func (e *Engine) ResolveTarget(target string) (Target, error) {
	candidates := []string{
		constants.Refs + "/" + target,
		constants.Refs + "/" + constants.Heads + "/" + target,
	}

	for _, name := range candidates {
		if !e.refs.Exists(name) {
			continue
		}

		resolution, err := e.refs.Resolve(name)
		if err != nil {
			return Target{}, err
		}
		if resolution.Hash == "" {
			return Target{}, fmt.Errorf("%w: %s has no commits", refs.ErrRefNotFound, name)
		}
		return Target{Name: target, Commit: resolution.Hash, Ref: resolution.Target}, nil
	}

	if !utils.IsValidHash(target) {
		return Target{}, fmt.Errorf("%w: no ref or commit named %q", refs.ErrRefNotFound, target)
	}
	return Target{Name: target, Commit: target}, nil
}

// Plan resolves target and diffs its file set against the working directory.
// Nothing on disk is modified.
func (e *Engine) Plan(target string, mode Mode) (*Plan, error) {
	resolved, err := e.ResolveTarget(target)
	if err != nil {
		return nil, err
	}

	files, err := e.targetFiles(resolved.Commit, mode)
	if err != nil {
		return nil, err
	}

	current, dirs, err := e.workingFiles()
	if err != nil {
		return nil, err
	}

	plan := &Plan{Target: resolved, Mode: mode}

	for _, path := range sortedKeys(current) {
		if _, wanted := files[path]; !wanted {
			plan.Actions = append(plan.Actions, Action{Kind: ActionRemove, Path: path})
		}
	}

	for _, dir := range emptyDirs(dirs, current, files) {
		plan.Actions = append(plan.Actions, Action{Kind: ActionRemove, Path: dir})
	}

	for _, path := range sortedKeys(files) {
		hash := files[path]

		blob, err := e.objects.ReadBlob(hash)
		if err != nil {
			return nil, fmt.Errorf("checkout %s: %s: %w", target, path, err)
		}

		kind := ActionAdd
		if existing, ok := current[path]; ok {
			kind = ActionReplace
			if existing == hash {
				kind = ActionKeep
			}
		}
		plan.Actions = append(plan.Actions, Action{Kind: kind, Path: path, Hash: hash, content: blob.Content()})
	}

	slog.Debug("Planned checkout",
		"target", target,
		"commit", resolved.Commit,
		"mode", mode,
		"remove", plan.Count(ActionRemove),
		"add", plan.Count(ActionAdd),
		"replace", plan.Count(ActionReplace),
		"keep", plan.Count(ActionKeep))
	return plan, nil
}

// targetFiles returns path -> blob hash for the commit according to mode.
func (e *Engine) targetFiles(commitHash string, mode Mode) (map[string]string, error) {
	switch mode {
	case ModeSnapshot:
		commit, err := e.objects.ReadCommit(commitHash)
		if err != nil {
			return nil, err
		}
		files := make(map[string]string)
		if err := e.layerTree(files, commit.TreeHash()); err != nil {
			return nil, err
		}
		return files, nil

	case ModeReplay:
		history, err := graph.History(e.objects, commitHash)
		if err != nil {
			return nil, err
		}
		files := make(map[string]string)
		for _, commit := range slices.Backward(history) {
			if err := e.layerTree(files, commit.TreeHash()); err != nil {
				return nil, err
			}
		}
		return files, nil

	default:
		return nil, fmt.Errorf("unknown checkout mode %v", mode)
	}
}

// layerTree writes the blob entries of treeHash into files, overwriting earlier values.
func (e *Engine) layerTree(files map[string]string, treeHash string) error {
	tree, err := e.objects.ReadTree(treeHash)
	if err != nil {
		return err
	}

	for _, entry := range tree.Entries() {
		if !entry.IsBlob() {
			slog.Debug("Skipping subtree entry",
				"tree", treeHash,
				"name", entry.Name())
			continue
		}
		if !isSafePath(entry.Name()) {
			return fmt.Errorf("%w: %q in tree %s", ErrUnsafePath, entry.Name(), treeHash)
		}
		files[entry.Name()] = entry.Hash()
	}
	return nil
}

func isSafePath(name string) bool {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." || part == constants.Rgit {
			return false
		}
	}
	return true
}

// workingFiles returns slash path -> blob hash of every file under the working
// directory except the metadata directory, and the slash paths of every
// directory below the root. Non-regular files hash to "".
func (e *Engine) workingFiles() (map[string]string, []string, error) {
	files := make(map[string]string)
	var dirs []string

	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == e.root {
			return nil
		}

		rel, err := filepath.Rel(e.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == constants.Rgit && filepath.Dir(path) == e.root {
				return filepath.SkipDir
			}
			dirs = append(dirs, rel)
			return nil
		}

		if !d.Type().IsRegular() {
			files[rel] = ""
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		hash, err := utils.ComputeHash(content, utils.BlobObjectType)
		if err != nil {
			return err
		}
		files[rel] = hash
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan working directory: %w", err)
	}
	return files, dirs, nil
}

// emptyDirs returns the directories that hold no current file and are not a
// parent of a target file, deepest first. Directories emptied by file
// removals are pruned by remove itself.
func emptyDirs(dirs []string, current, target map[string]string) []string {
	occupied := make(map[string]bool)
	for _, paths := range []map[string]string{current, target} {
		for path := range paths {
			for dir := parentDir(path); dir != ""; dir = parentDir(dir) {
				occupied[dir] = true
			}
		}
	}

	var empty []string
	for _, dir := range dirs {
		if !occupied[dir] {
			empty = append(empty, dir)
		}
	}
	slices.Sort(empty)
	slices.Reverse(empty)
	return empty
}

func parentDir(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// Apply carries out plan on the working directory.
func (e *Engine) Apply(plan *Plan) error {
	completed := 0

	for _, action := range plan.Actions {
		var err error
		switch action.Kind {
		case ActionKeep:
			continue
		case ActionRemove:
			err = e.remove(action.Path)
		case ActionAdd, ActionReplace:
			err = e.write(action.Path, action.content)
		}
		if err != nil {
			return &ApplyError{Completed: completed, Action: action, Err: err}
		}

		completed++
		slog.Debug("Applied checkout action",
			"action", action.Kind,
			"path", action.Path)
	}
	return nil
}

// remove deletes a file or empty directory and any parent directories it leaves empty.
func (e *Engine) remove(path string) error {
	full := filepath.Join(e.root, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	for dir := filepath.Dir(full); dir != e.root && strings.HasPrefix(dir, e.root); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) write(path string, content []byte) error {
	full := filepath.Join(e.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), constants.DirPerms); err != nil {
		return err
	}

	// A non-regular file or directory in the way is cleared first
	if info, err := os.Lstat(full); err == nil && !info.Mode().IsRegular() {
		if err := os.RemoveAll(full); err != nil {
			return err
		}
	}
	return os.WriteFile(full, content, constants.FilePerms)
}

// Checkout plans and applies target, then points HEAD at it: symbolically
// when target resolved through a ref, detached otherwise.
func (e *Engine) Checkout(target string, mode Mode) (*Plan, error) {
	plan, err := e.Plan(target, mode)
	if err != nil {
		return nil, err
	}

	if err := e.Apply(plan); err != nil {
		return plan, err
	}

	if plan.Target.Detached() {
		err = e.refs.UpdateRef(constants.Head, plan.Target.Commit)
	} else {
		err = e.refs.SymbolicRef(constants.Head, plan.Target.Ref)
	}
	if err != nil {
		return plan, fmt.Errorf("failed to update %s: %w", constants.Head, err)
	}

	return plan, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
