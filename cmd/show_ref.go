package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

var showRefCmd = &cobra.Command{
	Use:   "show-ref [prefix]",
	Short: "List direct refs and the hashes they hold",
	Long: `Print "<hash> <ref>" for every ref file under refs/, or only under refs/<prefix>.

Examples:
  rgit show-ref
  rgit show-ref heads
  rgit show-ref remotes`,
	SilenceUsage: true,
	Args:         maximumArgs(1),
	RunE:         runShowRef,
}

func init() {
	rootCmd.AddCommand(showRefCmd)
}

func runShowRef(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}

	refs, err := repo.Refs().List(prefix)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	slices.Sort(names)

	out := cmd.OutOrStdout()
	for _, name := range names {
		fmt.Fprintf(out, "%s %s\n", refs[name], name)
	}
	return nil
}
