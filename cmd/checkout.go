package cmd

import (
	"errors"
	"fmt"

	"github.com/KostasZigo/rgit/internal/checkout"
	"github.com/KostasZigo/rgit/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout [--replay] <branch | ref | commit>",
	Short: "Make the working directory match a commit",
	Long: `Resolve the target as refs/<target>, then refs/heads/<target>, then as a commit hash,
and rewrite the working directory to hold exactly that commit's files. Files the
commit does not have are removed; the .rgit directory is never touched.

With --replay the first-parent history is layered oldest first instead, so files
from earlier commits are kept unless a later commit rewrites them.

HEAD follows the target: symbolic when it named a ref, detached at the hash otherwise.`,
	SilenceUsage: true,
	Args:         exactArgs(1),
	RunE:         runCheckout,
}

var replayFlag bool

func init() {
	rootCmd.AddCommand(checkoutCmd)

	checkoutCmd.Flags().BoolVar(&replayFlag, "replay", false, "Layer the whole first-parent history instead of one snapshot")
}

var actionColors = map[checkout.ActionKind]*color.Color{
	checkout.ActionAdd:     color.New(color.FgGreen),
	checkout.ActionRemove:  color.New(color.FgRed),
	checkout.ActionReplace: color.New(color.FgYellow),
}

func runCheckout(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	mode := checkout.ModeSnapshot
	if replayFlag {
		mode = checkout.ModeReplay
	}

	engine := checkout.New(repo.Root(), repo.Objects(), repo.Refs())
	plan, err := engine.Checkout(args[0], mode)

	var applyErr *checkout.ApplyError
	if errors.As(err, &applyErr) {
		return fmt.Errorf("working directory left partially updated: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to checkout %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	for _, action := range plan.Changes() {
		fmt.Fprintf(out, "%s %s\n", actionColors[action.Kind].Sprintf("%-7s", action.Kind), action.Path)
	}

	if plan.Target.Detached() {
		fmt.Fprintf(out, "HEAD is now at %s\n", utils.ShortHash(plan.Target.Commit))
	} else {
		fmt.Fprintf(out, "Switched to %s (%s)\n", plan.Target.Ref, utils.ShortHash(plan.Target.Commit))
	}
	return nil
}
