package cmd

import (
	"fmt"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/internal/repository"
	"github.com/KostasZigo/rgit/utils"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new rgit repository",
	Long: `The 'init' command sets up a new rgit repository in the current directory or in the given one.
It creates the .rgit directory with objects/, refs/heads, refs/tags, an empty index, a default config
and HEAD pointing at refs/heads/main. An existing repository is never overwritten.`,
	SilenceUsage: true,
	Args:         maximumArgs(1),
	RunE:         runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// runInit executes repository initialization at specified or current directory.
func runInit(cmd *cobra.Command, args []string) error {
	dirPath := "."
	if len(args) > 0 {
		dirPath = args[0]
	}

	if _, err := repository.InitRepository(dirPath); err != nil {
		return fmt.Errorf("failed to initialize repository - %w", err)
	}

	cmd.Printf("Initialized empty rgit repository in %s\n", utils.BuildDirPath(dirPath, constants.Rgit))
	return nil
}
