package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command for the collegeview CLI. Without
// a subcommand it starts the interactive browser.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	browse := NewBrowseCommand(opts)

	cmd := &cobra.Command{
		Use:   "collegeview",
		Short: "Browse a college listing in the terminal",
		Long: `Browse, search and sort a college listing.

Records are revealed a page at a time as the cursor nears the end of the
list. The dataset comes from the built-in listing, JSON/YAML/CSV files,
SQLite or PostgreSQL, as configured.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			_ = godotenv.Load()
			return nil
		},
		RunE: browse.RunE,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "",
		"path to YAML config (default ./collegeview.yaml, then ~/.config/collegeview/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(browse)
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}
