package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [--list] | <key> [<value>]",
	Short: "Read or write .rgit/config",
	Long: `Get or set a value in the repository config file.

Keys: user.name, user.email, core.object_cache_size, remotes.<name>

Examples:
  rgit config user.name "Jane"
  rgit config remotes.origin /srv/repo/.rgit
  rgit config --list`,
	SilenceUsage: true,
	Args:         maximumArgs(2),
	RunE:         runConfig,
}

var listFlag bool

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVarP(&listFlag, "list", "l", false, "List every configured key")
}

func runConfig(cmd *cobra.Command, args []string) error {
	repo, err := openRepository()
	if err != nil {
		return err
	}
	cfg := repo.Config()
	out := cmd.OutOrStdout()

	switch {
	case listFlag:
		for _, key := range cfg.Keys() {
			value, err := cfg.Get(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s=%s\n", key, value)
		}
		return nil

	case len(args) == 1:
		value, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, value)
		return nil

	case len(args) == 2:
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		return repo.SaveConfig()

	default:
		cmd.SilenceUsage = false
		return fmt.Errorf("%s requires a key or --list", cmd.Name())
	}
}
