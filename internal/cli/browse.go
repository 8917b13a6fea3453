package cli

import (
	"context"
	"errors"
	"os"
	ossignal "os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"collegeview/internal/config"
	"collegeview/internal/dataset"
	"collegeview/internal/domain"
	"collegeview/internal/engine"
	"collegeview/internal/logger"
	"collegeview/internal/metrics"
	"collegeview/internal/signal"
	"collegeview/internal/summarizer"
	"collegeview/internal/tui"
)

// NewBrowseCommand creates the interactive browse command.
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Search and sort the listing interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd.Context(), rootOpts)
		},
	}
}

// session is one browsing session: the engine, the near-end signal that
// feeds it, and the TUI bound to both.
type session struct {
	engine *engine.Engine
	model  tui.Model
}

func newSession(records []domain.Record, cfg *config.AppConfig, log *zap.Logger, rec engine.Recorder) (*session, error) {
	opts, err := engineOptions(cfg.Reveal, log)
	if err != nil {
		return nil, err
	}
	nearEnd := signal.New(cfg.UI.NearEndRows)
	opts = append(opts, engine.WithSignal(nearEnd))
	if rec != nil {
		opts = append(opts, engine.WithRecorder(rec))
	}

	e := engine.New(dataset.NewMemory(records), opts...)
	summary := summarizer.Summarize(records, 3).String()
	return &session{engine: e, model: tui.New(e, nearEnd, summary)}, nil
}

func (s *session) Close() {
	s.model.Close()
	s.engine.Close()
}

func runBrowse(ctx context.Context, rootOpts *RootOptions) error {
	cfg, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}
	log, err := fileLogger(cfg, rootOpts)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	ctx = logger.ContextWithLogger(ctx, log)

	records, err := loadRecords(ctx, cfg.Dataset)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	if err != nil {
		return err
	}

	sess, err := newSession(records, cfg, log, collector)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := ossignal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics.Addr, reg, log)
		})
	}

	g.Go(func() error {
		// leaving the TUI ends the session
		defer stop()
		progOpts := []tea.ProgramOption{tea.WithContext(gctx)}
		if !cfg.UI.Inline {
			progOpts = append(progOpts, tea.WithAltScreen())
		}
		_, err := tea.NewProgram(sess.model, progOpts...).Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	return g.Wait()
}
