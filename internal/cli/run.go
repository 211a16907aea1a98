package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/settsim"
	"github.com/aretw0/settsim/internal/config"
	"github.com/aretw0/settsim/internal/logging"
	"github.com/aretw0/settsim/internal/presentation/tui"
	"github.com/aretw0/settsim/pkg/domain"
	"github.com/aretw0/settsim/pkg/observability"
	"github.com/google/uuid"
)

// DefaultLockWait bounds how long a run waits for another run on the same deployment.
const DefaultLockWait = 10 * time.Second

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Config config.Config
	// ConfigPath is the profile Config was loaded from; it is repeated in replay commands.
	ConfigPath string
	// Report prints the markdown run report to Stdout.
	Report bool
	// Banner prints the ASCII banner before the run.
	Banner   bool
	LockWait time.Duration
	Stdout   io.Writer
	Stderr   io.Writer
	// Renderer formats the report; defaults to tui.NewRenderer.
	Renderer func(string) (string, error)
}

// Execute deploys the reference vault on the configured backend, runs one simulation
// and reports it. The returned report is populated even when the run fails.
func Execute(ctx context.Context, opts RunOptions) (*tui.Report, error) {
	cfg := opts.Config
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.LockWait <= 0 {
		opts.LockWait = DefaultLockWait
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	base := logging.NewWithWriter(opts.Stderr, level)
	logger := base.With("run_id", runID)

	if opts.Banner {
		tui.PrintBanner(opts.Stdout)
	}

	store, release, err := openBackend(ctx, cfg, opts.LockWait, logger)
	if err != nil {
		return nil, err
	}
	defer release()

	dep, err := settsim.Deploy(ctx, store, settsim.DeploymentConfig{
		Strategy:  cfg.Strategy,
		Accounts:  cfg.Pool.Accounts,
		Reserved:  cfg.Pool.Reserved,
		Namespace: cfg.Strategy + ":" + runID,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to deploy vault: %w", err)
	}

	metrics := observability.NewMetrics()
	hooks := []domain.LifecycleHooks{observability.LogHooks(logger), metrics.Hooks()}
	if cfg.Metrics.Addr != "" {
		srv, stop, err := startServer(cfg.Metrics.Addr, metrics, logger)
		if err != nil {
			return nil, err
		}
		defer stop()
		hooks = append(hooks, srv.Hooks())
	}

	sim, err := settsim.New(dep.Ledger, dep.Dispatcher, dep.Pool,
		settsim.WithSeed(cfg.Seed),
		settsim.WithUserCount(cfg.Users),
		settsim.WithAdvanceRange(cfg.Chain.MinAdvance, cfg.Chain.MaxAdvance),
		settsim.WithRunID(runID),
		settsim.WithLogger(base),
		settsim.WithLifecycleHooks(domain.ChainHooks(hooks...)),
	)
	if err != nil {
		return nil, err
	}

	runErr := sim.Simulate(ctx, cfg.Actions)

	report := &tui.Report{
		RunID:      runID,
		Strategy:   cfg.Strategy,
		Seed:       sim.Seed(),
		UserCount:  cfg.Users,
		Requested:  cfg.Actions,
		ConfigPath: opts.ConfigPath,
		Actors:     sim.ActorNames(),
		Actions:    sim.Actions(),
		Err:        runErr,
	}
	// The run context may already be cancelled; the final state is still worth reading.
	if final, err := dep.Ledger.Snapshot(context.WithoutCancel(ctx)); err == nil {
		report.Final = final
	} else {
		logger.Warn("final snapshot failed", "error", err)
	}

	if runErr != nil {
		logger.Error("simulation failed", "seed", sim.Seed(), "error", runErr)
	} else {
		logger.Info("simulation finished", "seed", sim.Seed(), "actions", len(report.Actions))
	}

	if opts.Report {
		if err := printReport(opts, report); err != nil {
			logger.Warn("report rendering failed", "error", err)
		}
	} else {
		printSystemMessage(opts.Stdout, "seed %d: %s", report.Seed, outcome(runErr))
	}

	return report, runErr
}

func printReport(opts RunOptions, report *tui.Report) error {
	render := opts.Renderer
	if render == nil {
		render = tui.NewRenderer()
	}
	out, err := render(report.Markdown())
	if err != nil {
		return err
	}
	_, err = io.WriteString(opts.Stdout, out)
	return err
}

func outcome(err error) string {
	if err == nil {
		return "all actions succeeded"
	}
	var execErr *domain.ExecutionError
	if errors.As(err, &execErr) {
		if isInterrupted(err) {
			return fmt.Sprintf("interrupted at action %d", execErr.Index)
		}
		return fmt.Sprintf("action %d failed", execErr.Index)
	}
	return "failed"
}
