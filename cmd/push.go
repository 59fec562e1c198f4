package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KostasZigo/rgit/internal/config"
	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/internal/repository"
	"github.com/KostasZigo/rgit/internal/sync"
	"github.com/KostasZigo/rgit/utils"
	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push <remote> <branch>",
	Short: "Send a branch and every object it reaches to another repository",
	Long: `Copy the objects reachable from refs/<branch> that the remote lacks, then point
the remote's refs/<branch> at the local tip.

<remote> is a name from the [remotes] table of .rgit/config or a path to a repository.
<branch> is a path under refs/ such as heads/main; a bare name means heads/<name>.`,
	SilenceUsage: true,
	Args:         exactArgs(2),
	RunE:         runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	repo, transport, err := openTransport(args[0])
	if err != nil {
		return err
	}

	result, err := sync.Push(cmd.Context(), repo, transport, branchPath(args[1]))
	if err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}

	cmd.Printf("Pushed %s (%s) to %s: %d of %d object(s) transferred\n",
		result.Ref, utils.ShortHash(result.Commit), transport.Root(), result.Transferred, result.Reachable)
	return nil
}

// openTransport opens the current repository and a file transport to remote,
// which is either a configured remote name or a path.
func openTransport(remote string) (*repository.Repository, *sync.FileTransport, error) {
	repo, err := openRepository()
	if err != nil {
		return nil, nil, err
	}

	path, err := repo.Config().Remote(remote)
	if errors.Is(err, config.ErrRemoteNotFound) {
		path = remote
	} else if err != nil {
		return nil, nil, err
	}

	transport, err := sync.NewFileTransport(path)
	if err != nil {
		return nil, nil, err
	}
	return repo, transport, nil
}

// branchPath turns "main" into "heads/main" and leaves "heads/main" or "tags/v1" alone.
func branchPath(branch string) string {
	branch = strings.TrimPrefix(branch, constants.Refs+"/")
	if strings.Contains(branch, "/") {
		return branch
	}
	return constants.Heads + "/" + branch
}
