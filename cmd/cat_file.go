package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file [-t | -s] <hash>",
	Short: "Print the content, type or size of a stored object",
	Long: `Read an object from .rgit/objects and print its payload without the header.
With -t print the object type instead, with -s its payload size in bytes.`,
	SilenceUsage: true,
	Args:         exactArgs(1),
	RunE:         runCatFile,
}

var (
	catTypeFlag bool
	catSizeFlag bool
)

func init() {
	rootCmd.AddCommand(catFileCmd)

	catFileCmd.Flags().BoolVarP(&catTypeFlag, "type", "t", false, "Print the object type")
	catFileCmd.Flags().BoolVarP(&catSizeFlag, "size", "s", false, "Print the payload size")
	catFileCmd.MarkFlagsMutuallyExclusive("type", "size")
}

func runCatFile(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	object, err := repo.Objects().Read(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case catTypeFlag:
		fmt.Fprintln(out, object.Type)
	case catSizeFlag:
		fmt.Fprintln(out, len(object.Content))
	default:
		out.Write(object.Content)
	}
	return nil
}
