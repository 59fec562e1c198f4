package cmd

import (
	"github.com/spf13/cobra"
)

var updateRefCmd = &cobra.Command{
	Use:   "update-ref <ref> <hash>",
	Short: "Point a ref directly at a commit",
	Long: `Write <hash> into the ref file, creating parent directories as needed.

Example:
  rgit update-ref refs/heads/main 1f7a7a47...`,
	SilenceUsage: true,
	Args:         exactArgs(2),
	RunE:         runUpdateRef,
}

func init() {
	rootCmd.AddCommand(updateRefCmd)
}

func runUpdateRef(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	return repo.Refs().UpdateRef(args[0], args[1])
}
