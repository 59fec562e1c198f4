package objects

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/utils"
)

// Represents a snapshot of the repository
type Commit struct {
	hash     string
	treeHash string
	parents  []string
	author   string
	message  string
	content  []byte
}

// NewCommit builds a commit over treeHash. Empty parent hashes are ignored.
func NewCommit(treeHash string, parents []string, author, message string) (*Commit, error) {
	if err := validateHash(treeHash); err != nil {
		return nil, fmt.Errorf("commit tree: %w", err)
	}
	if strings.ContainsAny(author, "\n") {
		return nil, fmt.Errorf("invalid commit author %q: must be a single line", author)
	}

	var parentHashes []string
	for _, parent := range parents {
		if parent == "" {
			continue
		}
		if err := validateHash(parent); err != nil {
			return nil, fmt.Errorf("commit parent: %w", err)
		}
		parentHashes = append(parentHashes, parent)
	}

	content := buildCommitContent(treeHash, parentHashes, author, message)
	hash, err := utils.ComputeHash(content, utils.CommitObjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for commit: %v", err)
	}

	return &Commit{
		hash:     hash,
		treeHash: treeHash,
		parents:  parentHashes,
		author:   author,
		message:  message,
		content:  content,
	}, nil
}

func NewInitialCommit(treeHash, author, message string) (*Commit, error) {
	return NewCommit(treeHash, nil, author, message)
}

// buildCommitContent lays out the commit text:
//
//	tree <hash>
//	parent <hash>      (zero or more)
//	author <author>
//
//	<message>
func buildCommitContent(treeHash string, parents []string, author, message string) []byte {
	var buf bytes.Buffer

	buf.WriteString(constants.CommitTreePrefix + treeHash + "\n")

	for _, parent := range parents {
		buf.WriteString(constants.CommitParentPrefix + parent + "\n")
	}

	buf.WriteString(constants.CommitAuthorPrefix + author + "\n")

	// Blank line before message
	buf.WriteByte('\n')

	// The message is always followed by exactly one newline, even when it ends in one
	buf.WriteString(message)
	buf.WriteByte('\n')

	return buf.Bytes()
}

// ParseCommit decodes commit content read back from the store.
func ParseCommit(hash string, content []byte) (*Commit, error) {
	text := string(content)
	headerBlock, message, found := strings.Cut(text, "\n\n")
	if !found {
		return nil, fmt.Errorf("%w: commit %s: missing blank line before message", ErrMalformedObject, hash)
	}

	commit := &Commit{hash: hash, content: content}
	var sawAuthor bool

	for _, line := range strings.Split(headerBlock, "\n") {
		switch {
		case strings.HasPrefix(line, constants.CommitTreePrefix):
			commit.treeHash = strings.TrimSpace(strings.TrimPrefix(line, constants.CommitTreePrefix))
		case strings.HasPrefix(line, constants.CommitParentPrefix):
			commit.parents = append(commit.parents, strings.TrimSpace(strings.TrimPrefix(line, constants.CommitParentPrefix)))
		case strings.HasPrefix(line, constants.CommitAuthorPrefix):
			commit.author = strings.TrimPrefix(line, constants.CommitAuthorPrefix)
			sawAuthor = true
		}
	}

	if commit.treeHash == "" {
		return nil, fmt.Errorf("%w: commit %s: missing tree line", ErrMalformedObject, hash)
	}
	if !sawAuthor {
		return nil, fmt.Errorf("%w: commit %s: missing author line", ErrMalformedObject, hash)
	}

	message, ok := strings.CutSuffix(message, "\n")
	if !ok {
		return nil, fmt.Errorf("%w: commit %s: message must end in a newline", ErrMalformedObject, hash)
	}
	commit.message = message
	return commit, nil
}

func (c *Commit) Hash() string {
	return c.hash
}

func (c *Commit) Type() utils.ObjectType {
	return utils.CommitObjectType
}

func (c *Commit) TreeHash() string {
	return c.treeHash
}

// Parents returns parent hashes in stored order; the first one is the first parent.
func (c *Commit) Parents() []string {
	return c.parents
}

// FirstParent returns the first parent hash, or "" for a root commit.
func (c *Commit) FirstParent() string {
	if len(c.parents) == 0 {
		return ""
	}
	return c.parents[0]
}

func (c *Commit) Author() string {
	return c.author
}

func (c *Commit) Message() string {
	return c.message
}

func (c *Commit) Content() []byte {
	return c.content
}

func (c *Commit) Size() int {
	return len(c.content)
}

func (c *Commit) Header() string {
	return utils.ObjectHeader(utils.CommitObjectType, c.Size())
}

func (c *Commit) Data() []byte {
	return Encode(utils.CommitObjectType, c.content)
}

func (c *Commit) IsInitialCommit() bool {
	return len(c.parents) == 0
}

func (c *Commit) String() string {
	return fmt.Sprintf("Commit{hash: %s, tree: %s, parents: %v, author: %s, message: %q}",
		c.hash, c.treeHash, c.parents, c.author, c.message)
}
