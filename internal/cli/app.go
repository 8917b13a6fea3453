package cli

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"collegeview/internal/config"
	"collegeview/internal/dataset"
	"collegeview/internal/domain"
	"collegeview/internal/engine"
	"collegeview/internal/logger"
)

func loadConfig(opts *RootOptions) (*config.AppConfig, error) {
	if opts.ConfigPath == "" {
		cfg, _, err := config.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func logLevel(cfg *config.AppConfig, opts *RootOptions) string {
	if opts.Verbose {
		return "debug"
	}
	if cfg.Logging.Level != "" {
		return cfg.Logging.Level
	}
	return "info"
}

// fileLogger writes to the configured log file, or nowhere when none is
// set. The terminal belongs to the TUI.
func fileLogger(cfg *config.AppConfig, opts *RootOptions) (*zap.Logger, error) {
	if cfg.Logging.File == "" {
		return zap.NewNop(), nil
	}
	return logger.New(cfg.Logging.Env, logLevel(cfg, opts), cfg.Logging.File)
}

// streamLogger writes to w, or to the configured log file when one is set.
func streamLogger(w io.Writer, cfg *config.AppConfig, opts *RootOptions) (*zap.Logger, error) {
	if cfg.Logging.File != "" {
		return logger.New(cfg.Logging.Env, logLevel(cfg, opts), cfg.Logging.File)
	}
	return logger.NewTo(w, cfg.Logging.Env, logLevel(cfg, opts))
}

// loadRecords reads the configured dataset once.
func loadRecords(ctx context.Context, cfg config.DatasetConfig) ([]domain.Record, error) {
	log := logger.FromContext(ctx)
	var (
		records []domain.Record
		err     error
	)
	switch cfg.Type {
	case "embedded", "":
		records, err = dataset.Embedded()
	case "file":
		records, err = dataset.LoadFiles(cfg.Paths)
	case "sqlite", "postgres":
		var store *dataset.SQLStore
		store, err = openStore(ctx, cfg.Type, cfg.DSN, cfg.Table)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		records, err = store.Load(ctx)
	default:
		return nil, fmt.Errorf("unknown dataset type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	log.Info("dataset loaded", zap.String("type", cfg.Type), zap.Int("records", len(records)))
	return records, nil
}

func openStore(ctx context.Context, kind, dsn, table string) (*dataset.SQLStore, error) {
	switch kind {
	case "sqlite":
		return dataset.OpenSQLite(ctx, dsn, table)
	case "postgres":
		return dataset.OpenPostgres(ctx, dsn, table)
	}
	return nil, fmt.Errorf("unknown store type: %s", kind)
}

// engineOptions maps the reveal config onto engine options.
func engineOptions(cfg config.RevealConfig, log *zap.Logger) ([]engine.Option, error) {
	stale, err := engine.ParseStaleReveal(cfg.Stale)
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithWindow(cfg.Base, cfg.Increment),
		engine.WithSettleDelay(cfg.SettleDelay()),
		engine.WithStaleReveal(stale),
		engine.WithCancelOnChange(cfg.CancelOnChange),
		engine.WithLogger(log),
	}, nil
}

// parseSortField accepts the sortable field names, plus "reviews" for the
// review score and "" or "none" for no sort.
func parseSortField(s string) (domain.SortField, error) {
	switch s {
	case "", "none":
		return domain.SortNone, nil
	case "reviews":
		return domain.SortReviewsScore, nil
	}
	f := domain.SortField(s)
	if !f.Eligible() {
		return "", fmt.Errorf("invalid sort field %q: must be one of fees, rating, reviewsScore", s)
	}
	return f, nil
}
