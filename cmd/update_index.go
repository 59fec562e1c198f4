package cmd

import (
	"fmt"

	"github.com/KostasZigo/rgit/internal/index"
	"github.com/KostasZigo/rgit/internal/objects"
	"github.com/spf13/cobra"
)

var updateIndexCmd = &cobra.Command{
	Use:   "update-index [--add | --remove] <path> [<hash>]",
	Short: "Stage, restage or unstage a path",
	Long: `Record <path> -> <hash> in the index.

Without flags the path must already be staged and its hash is replaced.
With --add the path is staged whether or not it was before; when <hash> is
omitted the file is hashed and stored first. With --remove the path is unstaged.

Examples:
  rgit update-index --add hello.txt
  rgit update-index hello.txt 2211df3f...
  rgit update-index --remove hello.txt`,
	SilenceUsage: true,
	Args:         rangeArgs(1, 2),
	RunE:         runUpdateIndex,
}

var (
	addFlag    bool
	removeFlag bool
)

func init() {
	rootCmd.AddCommand(updateIndexCmd)

	updateIndexCmd.Flags().BoolVar(&addFlag, "add", false, "Stage the path even if it is not in the index")
	updateIndexCmd.Flags().BoolVar(&removeFlag, "remove", false, "Remove the path from the index")
	updateIndexCmd.MarkFlagsMutuallyExclusive("add", "remove")
}

func runUpdateIndex(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}

	path := args[0]
	hash := ""
	if len(args) == 2 {
		hash = args[1]
	}

	switch {
	case removeFlag:
		err = index.Update(repo.IndexPath(), func(idx *index.Index) error {
			return idx.Remove(path)
		})
		if err != nil {
			return err
		}
		cmd.Printf("Removed %s from index\n", path)
		return nil

	case hash == "" && addFlag:
		blob, err := objects.NewBlobFromFile(path)
		if err != nil {
			return err
		}
		if err := repo.Objects().Store(blob); err != nil {
			return fmt.Errorf("failed to store object: %w", err)
		}
		hash = blob.Hash()

	case hash == "":
		cmd.SilenceUsage = false
		return fmt.Errorf("%s requires a hash unless --add or --remove is given", cmd.Name())
	}

	err = index.Update(repo.IndexPath(), func(idx *index.Index) error {
		if addFlag {
			return idx.Add(path, hash)
		}
		return idx.Modify(path, hash)
	})
	if err != nil {
		return err
	}

	cmd.Printf("Staged %s -> %s\n", path, hash)
	return nil
}
