package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var revParseCmd = &cobra.Command{
	Use:          "rev-parse <revision>",
	Short:        "Resolve HEAD, a branch, a tag or a ref to a commit hash",
	SilenceUsage: true,
	Args:         exactArgs(1),
	RunE:         runRevParse,
}

func init() {
	rootCmd.AddCommand(revParseCmd)
}

func runRevParse(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	hash, err := repo.ResolveRevision(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
