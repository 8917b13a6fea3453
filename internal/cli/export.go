package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"collegeview/internal/dataset"
	"collegeview/internal/logger"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	To    string
	DSN   string
	Table string
	Out   string
}

// NewExportCommand creates the export command, which copies the configured
// dataset into a SQL table or a CSV file.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the configured dataset to SQLite, PostgreSQL or CSV",
		Long: `Copy the configured dataset to SQLite, PostgreSQL or CSV.

SQL targets have their table replaced. The result can be browsed by
setting dataset.type to sqlite or postgres.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts, opts)
		},
	}
	cmd.Flags().StringVar(&opts.To, "to", "", "target (sqlite|postgres|csv)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "SQLite path or PostgreSQL DSN")
	cmd.Flags().StringVar(&opts.Table, "table", dataset.DefaultTable, "target table")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "CSV output file (default stdout)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runExport(cmd *cobra.Command, rootOpts *RootOptions, opts *ExportOptions) error {
	cfg, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}
	log, err := streamLogger(cmd.ErrOrStderr(), cfg, rootOpts)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx := logger.ContextWithLogger(cmd.Context(), log)
	records, err := loadRecords(ctx, cfg.Dataset)
	if err != nil {
		return err
	}

	switch opts.To {
	case "csv":
		w := cmd.OutOrStdout()
		if opts.Out != "" {
			f, err := os.Create(opts.Out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if err := dataset.EncodeCSV(w, records); err != nil {
			return err
		}
	case "sqlite", "postgres":
		if opts.DSN == "" {
			return fmt.Errorf("--dsn is required for --to %s", opts.To)
		}
		store, err := openStore(ctx, opts.To, opts.DSN, opts.Table)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Write(ctx, records); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid target %q: must be sqlite, postgres or csv", opts.To)
	}

	log.Info("dataset exported", zap.String("to", opts.To), zap.Int("records", len(records)))
	return nil
}
