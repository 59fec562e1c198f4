package cmd

import (
	"fmt"
	"strings"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:          "log [revision]",
	Short:        "Show the first-parent history, newest first",
	SilenceUsage: true,
	Args:         maximumArgs(1),
	RunE:         runLog,
}

var oneLineFlag bool

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().BoolVar(&oneLineFlag, "oneline", false, "Print one line per commit")
}

func runLog(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	revision := constants.Head
	if len(args) == 1 {
		revision = args[0]
	}

	history, err := repo.Log(revision)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(history) == 0 {
		fmt.Fprintln(out, "No commits yet")
		return nil
	}

	hashColor := color.New(color.FgYellow)
	for _, commit := range history {
		if oneLineFlag {
			fmt.Fprintf(out, "%s %s\n", hashColor.Sprint(utils.ShortHash(commit.Hash())), firstLine(commit.Message()))
			continue
		}
		fmt.Fprintf(out, "%s %s\n", hashColor.Sprint("commit"), hashColor.Sprint(commit.Hash()))
		fmt.Fprintf(out, "Author: %s\n\n", commit.Author())
		fmt.Fprintf(out, "    %s\n\n", commit.Message())
	}
	return nil
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return line
}
