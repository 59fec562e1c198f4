package cmd

import (
	"fmt"
	"strings"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/spf13/cobra"
)

var symbolicRefCmd = &cobra.Command{
	Use:   "symbolic-ref <name> [<target>]",
	Short: "Read or write a symbolic ref",
	Long: `With one argument print the ref that <name> points to.
With two, make <name> an alias of <target>, e.g. HEAD -> refs/heads/main.`,
	SilenceUsage: true,
	Args:         rangeArgs(1, 2),
	RunE:         runSymbolicRef,
}

func init() {
	rootCmd.AddCommand(symbolicRefCmd)
}

func runSymbolicRef(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	if len(args) == 2 {
		return repo.Refs().SymbolicRef(args[0], args[1])
	}

	content, err := repo.Refs().ReadRef(args[0])
	if err != nil {
		return err
	}
	target, ok := strings.CutPrefix(content, constants.SymbolicRefPrefix)
	if !ok {
		return fmt.Errorf("ref %s is not a symbolic ref", args[0])
	}

	fmt.Fprintln(cmd.OutOrStdout(), target)
	return nil
}
