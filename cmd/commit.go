package cmd

import (
	"fmt"

	"github.com/KostasZigo/rgit/utils"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit -m <message> [--author <author>]",
	Short: "Record the staged files as a new commit",
	Long: `Write a tree from the index, commit it on top of HEAD, advance the branch HEAD
points to (or HEAD itself when detached) and clear the index.

The author defaults to "user.name <user.email>" from .rgit/config.`,
	SilenceUsage: true,
	Args:         exactArgs(0),
	RunE:         runCommit,
}

var (
	messageFlag string
	authorFlag  string
)

func init() {
	rootCmd.AddCommand(commitCmd)

	commitCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Commit message")
	commitCmd.Flags().StringVar(&authorFlag, "author", "", "Commit author, overrides user.name/user.email")
	commitCmd.MarkFlagRequired("message")
}

func runCommit(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	result, err := repo.Commit(messageFlag, authorFlag)
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	label := "root-commit "
	if result.Parent != "" {
		label = ""
	}
	cmd.Printf("[%s %s%s] %s\n", result.Ref, label, utils.ShortHash(result.Hash), messageFlag)
	return nil
}
