package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var commitTreeCmd = &cobra.Command{
	Use:   "commit-tree <message> <author> <tree> [<parent> | none]",
	Short: "Create a commit object over a tree",
	Long: `Store a commit pointing at <tree> with an optional parent and print its hash.
Refs are not touched; use update-ref to move a branch to the new commit.`,
	SilenceUsage: true,
	Args:         rangeArgs(3, 4),
	RunE:         runCommitTree,
}

func init() {
	rootCmd.AddCommand(commitTreeCmd)
}

func runCommitTree(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	message, author, treeHash := args[0], args[1], args[2]
	parent := ""
	if len(args) == 4 && !strings.EqualFold(args[3], "none") {
		parent = args[3]
	}

	if !repo.Objects().Exists(treeHash) {
		return fmt.Errorf("tree %s does not exist", treeHash)
	}

	hash, err := repo.CommitTree(message, author, treeHash, parent)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
