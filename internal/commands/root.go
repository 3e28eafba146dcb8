package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/acctree/internal/buildinfo"
	"github.com/cleared-dev/acctree/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "acctree",
		Short:   "Chart-of-accounts administration for ERP ledgers",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "config file")
	flags.StringVar(&opts.driver, "driver", "", "database driver: sqlite or postgres (overrides config)")
	flags.StringVar(&opts.dsn, "db", "", "database file or connection string (overrides config)")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newDeleteAccountCommand(opts),
		newImportCommand(opts),
		newExportCommand(opts),
		newListRootsCommand(opts),
	)

	return rootCmd
}
