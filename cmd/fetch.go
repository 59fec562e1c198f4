package cmd

import (
	"fmt"

	"github.com/KostasZigo/rgit/internal/sync"
	"github.com/KostasZigo/rgit/utils"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <remote> <branch>",
	Short: "Download a branch and every object it reaches from another repository",
	Long: `Copy the objects reachable from the remote's refs/<branch> that are missing locally,
verifying each one, and record the remote tip as refs/remotes/<branch>.
Local branches and the working directory are not changed.`,
	SilenceUsage: true,
	Args:         exactArgs(2),
	RunE:         runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	repo, transport, err := openTransport(args[0])
	if err != nil {
		return err
	}

	result, err := sync.Fetch(cmd.Context(), repo, transport, branchPath(args[1]))
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}

	cmd.Printf("Fetched %s (%s) from %s: %d of %d object(s) transferred\n",
		result.Ref, utils.ShortHash(result.Commit), transport.Root(), result.Transferred, result.Reachable)
	return nil
}
