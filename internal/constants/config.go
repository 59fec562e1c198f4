package constants

import "os"

// Command name constants used in tests and error messages.
// Cobra Use fields remain inline for CLI discoverability.
const (
	InitCmdName        = "init"
	HashObjectCmdName  = "hash-object"
	CatFileCmdName     = "cat-file"
	UpdateIndexCmdName = "update-index"
	WriteTreeCmdName   = "write-tree"
	CommitTreeCmdName  = "commit-tree"
	UpdateRefCmdName   = "update-ref"
	SymbolicRefCmdName = "symbolic-ref"
	RevParseCmdName    = "rev-parse"
	ShowRefCmdName     = "show-ref"
	CommitCmdName      = "commit"
	CheckoutCmdName    = "checkout"
	LogCmdName         = "log"
	PushCmdName        = "push"
	FetchCmdName       = "fetch"
	ConfigCmdName      = "config"
)

// Repository directory and file names define the rgit metadata structure.
const (
	// Rgit is the repository metadata directory.
	Rgit = ".rgit"

	// Objects stores content-addressable objects (blobs, trees, commits).
	Objects = "objects"

	// Refs contains branch and tag references.
	Refs = "refs"

	// Heads stores branch pointers under refs/.
	Heads = "heads"

	// Tags stores tag pointers under refs/.
	Tags = "tags"

	// Remotes stores fetched remote branch tips under refs/.
	Remotes = "remotes"

	// Head points to current branch or detached commit.
	Head = "HEAD"

	// Index is the staging area file.
	Index = "index"

	// Config is the repository configuration file (TOML).
	Config = "config"
)

// Default repository values.
const (
	// DefaultBranch is the initial branch name for new repositories.
	DefaultBranch = "main"

	// SymbolicRefPrefix marks a symbolic ref ("ref: refs/heads/main").
	SymbolicRefPrefix = "ref: "

	// DefaultRefPrefix is prepended to branch names in HEAD file.
	DefaultRefPrefix = SymbolicRefPrefix + Refs + "/" + Heads + "/"

	// MaxSymbolicDepth bounds how many symbolic refs are followed before giving up.
	MaxSymbolicDepth = 5

	// DefaultObjectCacheSize is the number of decoded objects kept in memory per store.
	DefaultObjectCacheSize = 256
)

// File system permissions for created files and directories.
const (
	// DirPerms grants read/write/execute to owner, read/execute to others (rwxr-xr-x).
	DirPerms os.FileMode = 0755

	// FilePerms grants read/write to owner, read-only to others (rw-r--r--).
	FilePerms os.FileMode = 0644
)

// Cryptographic hash properties.
const (
	// HashByteLength is byte length of SHA-1 hash (20 bytes).
	HashByteLength = 20

	// HashStringLength is hex string length of SHA-1 hash (40 characters).
	HashStringLength = 40

	// HashDirPrefixLength is subdirectory prefix length under objects/ (2 characters).
	HashDirPrefixLength = 2
)

// Object prefixes used in object headers and commit metadata.
const (
	// CommitTreePrefix marks the tree line in commit objects.
	CommitTreePrefix = "tree "

	// CommitParentPrefix marks parent commit lines in commit objects.
	CommitParentPrefix = "parent "

	// CommitAuthorPrefix marks author metadata in commit objects.
	CommitAuthorPrefix = "author "
)

// Object format constants.
const (
	// NullByte separates header from content in objects.
	NullByte = '\x00'

	// DefaultFileMode is the only mode written into tree entries; executable bits are not tracked.
	DefaultFileMode = "100644"
)
