package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pfrederiksen/award-shares/internal/aggregate"
	"github.com/pfrederiksen/award-shares/internal/bbref"
	"github.com/pfrederiksen/award-shares/internal/config"
	"github.com/pfrederiksen/award-shares/internal/logger"
	"github.com/pfrederiksen/award-shares/internal/metrics"
	"github.com/pfrederiksen/award-shares/internal/scraper"
	"github.com/pfrederiksen/award-shares/internal/stats"
	"github.com/pfrederiksen/award-shares/internal/storage"
	"github.com/pfrederiksen/award-shares/internal/winners"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitSkipped = 2
)

// flags that are not configuration keys.
var localFlags = map[string]bool{
	"config":  true,
	"verbose": true,
}

type app struct {
	stdout   io.Writer
	stderr   io.Writer
	exitCode int

	configPath string
	verbose    bool

	// now and options are replaced in tests.
	now     func() time.Time
	options []scraper.Option
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{stdout: os.Stdout, stderr: os.Stderr, now: time.Now})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "award-shares",
		Short: "Rank players by their cumulative award-voting shares",
		Long: `Collects the voting history of a season award from basketball-reference.com,
sums every player's share of the vote across their career, and cross-references it
with how many seasons they played at least half and three quarters of their team's games.

The report is written as CSV to the output directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.run,
	}

	defaults := config.New()
	f := cmd.Flags()
	f.StringVar(&a.configPath, "config", "", "YAML config file (or env: "+config.EnvConfig+")")
	f.String("award", defaults.Award, "Award code: "+strings.Join(stats.AwardCodes(), ", "))
	f.String("league", defaults.League, "League code for season rows without one")
	f.Int("start-year", 0, "First voting year (default: the award's first season)")
	f.Int("end-year", 0, "Last voting year (default: the current year)")
	f.String("winners", "", "Award-count spreadsheet, .xlsx or .csv (default: <award>_winners.xlsx if present)")
	f.String("winners-sheet", "", "Worksheet of the winners workbook (default: the first)")
	f.String("output-dir", defaults.OutputDir, "Directory for the report")
	f.String("output", "", "Report file name (default: <award>_shares.csv)")
	f.String("format", defaults.Format, "Stdout format: csv, json or table")
	f.Int("top", 0, "Rows shown by --format table (0 for all)")
	f.Int("workers", defaults.Workers, "Players fetched concurrently")
	f.Bool("fail-fast", false, "Abort on the first failing year or player instead of skipping it")
	f.String("metrics-file", "", "Write Prometheus text-format metrics to this file")
	f.String("base-url", defaults.BaseURL, "Site base URL")
	f.Duration("timeout", defaults.Timeout, "Per-request timeout")
	f.Int("retries", defaults.Retries, "Retries per request")
	f.Duration("request-interval", defaults.RequestInterval, "Minimum time between requests")
	f.BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")

	return cmd
}

// overrides returns the explicitly set flags as config keys.
func (a *app) overrides(cmd *cobra.Command) map[string]string {
	out := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if localFlags[f.Name] {
			return
		}
		out[config.FlagKey(f.Name)] = f.Value.String()
	})
	if a.verbose {
		out["log_level"] = "debug"
	}
	return out
}

// run is the main command logic
func (a *app) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(a.configPath, a.overrides(cmd))
	if err != nil {
		return err
	}
	award, err := cfg.AwardInfo()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	log := logger.New(level, a.stderr).With(logger.Fields{"run_id": runID})
	logger.SetDefault(log)
	defer log.Sync()

	logger.Info("Starting run", logger.Fields{
		"award":      award.Code,
		"start_year": cfg.StartYear,
		"end_year":   cfg.EndYear,
		"workers":    cfg.Workers,
		"output_dir": cfg.OutputDir,
	})

	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	counts, err := loadWinners(cfg, award)
	if err != nil {
		return err
	}

	rec := metrics.New()
	opts := append([]scraper.Option{
		scraper.WithBaseURL(cfg.BaseURL),
		scraper.WithTimeout(cfg.Timeout),
		scraper.WithRetries(cfg.Retries, scraper.RetryWait, scraper.RetryMaxWait),
		scraper.WithRequestInterval(cfg.RequestInterval),
		scraper.WithMetrics(rec),
	}, a.options...)
	src := bbref.NewSource(scraper.New(opts...))

	agg := aggregate.New(src, counts, aggregate.Options{
		Award:     award,
		League:    cfg.League,
		StartYear: cfg.StartYear,
		EndYear:   cfg.EndYear,
		Workers:   cfg.Workers,
		FailFast:  cfg.FailFast,
		Metrics:   rec,
	})

	res, err := agg.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted: %w", err)
		}
		return fmt.Errorf("aggregating %s shares: %w", award.Code, err)
	}

	path, err := store.SaveReport(cfg.Output, award, res.Summaries)
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	logger.Info("Saved report", logger.Fields{
		"path":    path,
		"players": len(res.Summaries),
		"skipped": len(res.Skipped),
	})

	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Error("Failed to write metrics", logger.Fields{"path": cfg.MetricsFile}, err)
	}

	out := newOutputResult(res, path, runID, a.now())
	if err := WriteOutput(a.stdout, res, out, cfg.Format, cfg.Top); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if len(res.Skipped) > 0 {
		a.exitCode = ExitSkipped
	}
	return nil
}

// loadWinners loads the configured award-count table. Without one, the default
// "<award>_winners.xlsx" in the working directory is used if it exists.
func loadWinners(cfg *config.Config, award stats.Award) (*winners.Table, error) {
	path := cfg.Winners
	if path == "" {
		candidate := award.Code + "_winners.xlsx"
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	path, err := storage.ExpandHome(path)
	if err != nil {
		return nil, err
	}

	t, err := winners.Load(path, winners.WithSheet(cfg.WinnersSheet))
	if err != nil {
		return nil, err
	}
	if path == "" {
		logger.Info("No winners file; award counts default to 0", nil)
	} else {
		logger.Info("Loaded winners", logger.Fields{"path": path, "players": t.Len()})
	}
	return t, nil
}

// Run executes the command with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, &app{stdout: stdout, stderr: stderr, now: time.Now}, args)
}

func run(ctx context.Context, a *app, args []string) int {
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return ExitError
	}
	return a.exitCode
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
