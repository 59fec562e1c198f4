package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var writeTreeCmd = &cobra.Command{
	Use:          "write-tree",
	Short:        "Create a tree object from the index",
	Long:         `Store a flat tree with one "100644 blob <hash> <path>" line per index entry and print its hash.`,
	SilenceUsage: true,
	Args:         exactArgs(0),
	RunE:         runWriteTree,
}

func init() {
	rootCmd.AddCommand(writeTreeCmd)
}

func runWriteTree(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	hash, err := repo.WriteTree()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
