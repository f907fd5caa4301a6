package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mamatimer/internal/bootstrap"
	contractiondto "mamatimer/internal/modules/contraction/dto"
	fetaldto "mamatimer/internal/modules/fetal/dto"
	"mamatimer/internal/platform/calendar"
	"mamatimer/internal/platform/clock"
	"mamatimer/internal/platform/config"
	apperrors "mamatimer/internal/platform/errors"
	"mamatimer/internal/platform/format"
	"mamatimer/internal/platform/logging"
	"mamatimer/internal/platform/notify"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	dataDir    string
	configFile string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "mamatimer",
		Short:         "Fetal movement counter and contraction timer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", defaultDataDir(), "data directory")
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default <data>/config.yaml)")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newFetalCmd(flags))
	root.AddCommand(newContractionCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	return root
}

func defaultDataDir() string {
	if dir := os.Getenv("MAMATIMER_DATA"); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "mamatimer")
	}
	return "."
}

// loadApp builds the application for one command. The returned cleanup
// closes the app and the log file.
func loadApp(flags *globalFlags, opts bootstrap.Options) (*bootstrap.App, func(), error) {
	cfg, err := config.Load(flags.dataDir, flags.configFile)
	if err != nil {
		return nil, nil, err
	}
	logger, closeLog := openLogger(cfg)
	opts.Logger = logger
	app, err := bootstrap.New(cfg, opts)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	cleanup := func() {
		if err := app.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
		closeLog()
	}
	return app, cleanup, nil
}

// openLogger writes to the configured log file, falling back to stderr when
// the file cannot be opened.
func openLogger(cfg config.Config) (*slog.Logger, func()) {
	if cfg.LogFile == "" {
		return logging.New(os.Stderr, cfg.LogLevel), func() {}
	}
	f, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		logger := logging.New(os.Stderr, cfg.LogLevel)
		logger.Warn("open log file", "path", cfg.LogFile, "error", err)
		return logger, func() {}
	}
	return logging.New(f, cfg.LogLevel), func() { _ = f.Close() }
}

func parseDate(app *bootstrap.App, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return calendar.ParseDay(raw, app.Location)
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			queue := notify.NewQueue(32)
			app, cleanup, err := loadApp(flags, bootstrap.Options{Notifier: queue, Tickers: clock.SystemClock{}})
			if err != nil {
				return err
			}
			defer cleanup()
			return bootstrap.RunTUI(app, queue)
		},
	}
}

// ─── fetal ───────────────────────────────────────────────────────────────────

func newFetalCmd(flags *globalFlags) *cobra.Command {
	fetal := &cobra.Command{Use: "fetal", Aliases: []string{"kicks"}, Short: "Fetal movement counting"}

	fetal.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start a counting session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.FetalCLI.Start(cmd.Context())
			if err != nil {
				return err
			}
			ends := out.StartedAt.Add(time.Duration(out.RemainingSeconds) * time.Second)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "counting started: %s ends=%s\n", out.SessionID, ends.In(app.Location).Format("15:04"))
			return nil
		},
	})

	fetal.AddCommand(&cobra.Command{
		Use:   "tap",
		Short: "Record a felt movement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.FetalCLI.Tap(cmd.Context())
			if err != nil {
				return err
			}
			printMovement(cmd.OutOrStdout(), out, app.Location)
			return nil
		},
	})

	fetal.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the running session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.FetalCLI.Status(cmd.Context())
			if err != nil {
				return err
			}
			printFetalStatus(cmd.OutOrStdout(), out)
			return nil
		},
	})

	fetal.AddCommand(&cobra.Command{
		Use:   "end",
		Short: "End the running session and save it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.FetalCLI.End(cmd.Context())
			if err != nil {
				return err
			}
			printFetalEnd(cmd.OutOrStdout(), out)
			return nil
		},
	})

	var date string
	today := &cobra.Command{
		Use:   "today",
		Short: "Show a day's sessions and statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer cleanup()
			day, err := parseDate(app, date)
			if err != nil {
				return err
			}
			out, err := app.FetalCLI.Day(cmd.Context(), day)
			if err != nil {
				return err
			}
			printFetalDay(cmd.OutOrStdout(), out, app.Location)
			return nil
		},
	}
	today.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	fetal.AddCommand(today)

	fetal.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Count in the foreground; press enter for each movement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{
				Tickers:  clock.SystemClock{},
				Notifier: notify.NewTerminal(cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			status, err := app.FetalCLI.Status(ctx)
			if err != nil {
				return err
			}
			if !status.Active {
				if _, err := app.FetalCLI.Start(ctx); err != nil {
					return err
				}
			}
			taps := readLines(ctx, cmd.InOrStdin())
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			out := cmd.OutOrStdout()
			for {
				select {
				case <-ctx.Done():
					ended, err := app.FetalCLI.End(context.Background())
					if err != nil {
						return err
					}
					printFetalEnd(out, ended)
					return nil
				case <-taps:
					done, err := tapFetal(ctx, app, out)
					if err != nil || done {
						return err
					}
				case <-ticker.C:
					status, err := app.FetalCLI.Status(ctx)
					if err != nil {
						return err
					}
					if !status.Active {
						return printFetalSummary(ctx, app, out)
					}
					if status.RemainingSeconds%60 == 0 {
						printFetalStatus(out, status)
					}
				}
			}
		},
	})
	return fetal
}

// tapFetal records one tap of a run loop. A session that finished since the
// last status check reports done and prints the day summary.
func tapFetal(ctx context.Context, app *bootstrap.App, out io.Writer) (bool, error) {
	movement, err := app.FetalCLI.Tap(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return true, printFetalSummary(ctx, app, out)
	}
	if err != nil {
		return false, err
	}
	printMovement(out, movement, app.Location)
	return false, nil
}

func printFetalSummary(ctx context.Context, app *bootstrap.App, out io.Writer) error {
	day, err := app.FetalCLI.Day(ctx, time.Time{})
	if err != nil {
		return err
	}
	printFetalDay(out, day, app.Location)
	return nil
}

func printMovement(w io.Writer, out fetaldto.MovementOutput, loc *time.Location) {
	if out.Valid {
		_, _ = fmt.Fprintf(w, "movement counted: valid=%d clicks=%d\n", out.ValidCount, out.TotalClicks)
		return
	}
	_, _ = fmt.Fprintf(w, "click noted: valid=%d clicks=%d counts again at %s\n", out.ValidCount, out.TotalClicks, out.NextValidAt.In(loc).Format("15:04:05"))
}

func printFetalStatus(w io.Writer, out fetaldto.StatusOutput) {
	if !out.Active {
		_, _ = fmt.Fprintln(w, "no counting session")
		return
	}
	_, _ = fmt.Fprintf(w, "remaining=%s valid=%d clicks=%d\n", format.Clock(out.RemainingSeconds), out.ValidCount, out.TotalClicks)
}

func printFetalEnd(w io.Writer, out fetaldto.EndOutput) {
	if !out.Ended {
		_, _ = fmt.Fprintln(w, "no counting session")
		return
	}
	_, _ = fmt.Fprintf(w, "session saved: %s valid=%d clicks=%d\n", out.Record.ID, out.Record.ValidCount, out.Record.TotalClicks)
	if !out.Persisted {
		_, _ = fmt.Fprintln(w, "warning: the session could not be written to storage")
	}
}

func printFetalDay(w io.Writer, out fetaldto.DayOutput, loc *time.Location) {
	s := out.Stats
	_, _ = fmt.Fprintf(w, "%s sessions=%d valid=%d clicks=%d avg=%s estimate12h=%d\n",
		out.Key, s.SessionCount, s.TotalValidCount, s.TotalClicks, format.OneDecimal(s.AvgPerSession), s.Estimate12h)
	for _, r := range out.Records {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", format.StartTime(r.StartedAt, loc), r.ValidCount, r.TotalClicks)
	}
}

// ─── contraction ─────────────────────────────────────────────────────────────

func newContractionCmd(flags *globalFlags) *cobra.Command {
	contraction := &cobra.Command{Use: "contraction", Short: "Contraction timing"}

	contraction.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start timing a contraction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.ContractionCLI.Start(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "contraction started: %s at=%s\n", out.SessionID, out.StartedAt.In(app.Location).Format("15:04:05"))
			return nil
		},
	})

	contraction.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop timing and save the contraction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.ContractionCLI.Stop(cmd.Context())
			if err != nil {
				return err
			}
			printContractionStop(cmd.OutOrStdout(), out)
			return nil
		},
	})

	contraction.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the running contraction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.ContractionCLI.Status(cmd.Context())
			if err != nil {
				return err
			}
			printContractionStatus(cmd.OutOrStdout(), out)
			return nil
		},
	})

	var date string
	today := &cobra.Command{
		Use:   "today",
		Short: "Show a day's contractions and statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer cleanup()
			day, err := parseDate(app, date)
			if err != nil {
				return err
			}
			out, err := app.ContractionCLI.Day(cmd.Context(), day)
			if err != nil {
				return err
			}
			printContractionDay(cmd.OutOrStdout(), out, app.Location)
			return nil
		},
	}
	today.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	contraction.AddCommand(today)

	contraction.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Time one contraction in the foreground; press enter or interrupt to stop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{
				Tickers:  clock.SystemClock{},
				Notifier: notify.NewTerminal(cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			status, err := app.ContractionCLI.Status(ctx)
			if err != nil {
				return err
			}
			if !status.Active {
				if _, err := app.ContractionCLI.Start(ctx); err != nil {
					return err
				}
			}
			lines := readLines(ctx, cmd.InOrStdin())
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			out := cmd.OutOrStdout()
			for {
				select {
				case <-ctx.Done():
				case <-lines:
				case <-ticker.C:
					status, err := app.ContractionCLI.Status(ctx)
					if err != nil {
						return err
					}
					if status.ElapsedSeconds%15 == 0 {
						printContractionStatus(out, status)
					}
					continue
				}
				stopped, err := app.ContractionCLI.Stop(context.Background())
				if err != nil {
					return err
				}
				printContractionStop(out, stopped)
				return nil
			}
		},
	})
	return contraction
}

func printContractionStatus(w io.Writer, out contractiondto.StatusOutput) {
	if !out.Active {
		_, _ = fmt.Fprintln(w, "no contraction running")
		return
	}
	_, _ = fmt.Fprintf(w, "elapsed=%s\n", format.Clock(out.ElapsedSeconds))
}

func printContractionStop(w io.Writer, out contractiondto.StopOutput) {
	if !out.Stopped {
		_, _ = fmt.Fprintln(w, "no contraction running")
		return
	}
	r := out.Record
	_, _ = fmt.Fprintf(w, "contraction saved: duration=%s interval=%s", format.Clock(r.DurationSeconds), intervalText(r))
	if r.IsLabor {
		_, _ = fmt.Fprint(w, " labor=yes")
	}
	_, _ = fmt.Fprintln(w)
	if !out.Persisted {
		_, _ = fmt.Fprintln(w, "warning: the contraction could not be written to storage")
	}
}

func printContractionDay(w io.Writer, out contractiondto.DayOutput, loc *time.Location) {
	s := out.Stats
	_, _ = fmt.Fprintf(w, "%s count=%d avg_duration=%s avg_interval=%s labor=%d\n",
		out.Key, s.TotalCount, format.Clock(s.AvgDuration), format.Interval(s.AvgInterval), s.LaborCount)
	for _, r := range out.Records {
		labor := ""
		if r.IsLabor {
			labor = "labor"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", format.StartTime(r.StartedAt, loc), format.Clock(r.DurationSeconds), intervalText(r), labor)
	}
}

func intervalText(r contractiondto.RecordOutput) string {
	if r.ShowDash {
		return format.Dash
	}
	return format.Interval(r.IntervalSeconds)
}

// ─── history ─────────────────────────────────────────────────────────────────

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Past days across both trackers"}

	var kind string
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded days, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer cleanup()
			days, err := app.HistoryCLI.List(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if len(days) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no history")
				return nil
			}
			for _, d := range days {
				line := d.Key
				if d.Fetal != nil {
					line += fmt.Sprintf("\tfetal sessions=%d valid=%d", d.Fetal.Stats.SessionCount, d.Fetal.Stats.TotalValidCount)
				}
				if d.Contraction != nil {
					line += fmt.Sprintf("\tcontractions=%d labor=%d", d.Contraction.Stats.TotalCount, d.Contraction.Stats.LaborCount)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	list.Flags().StringVar(&kind, "kind", "all", "fetal|contraction|all")

	var date, exportKind string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write a markdown note for one day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(flags, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer cleanup()
			day, err := parseDate(app, date)
			if err != nil {
				return err
			}
			out, err := app.HistoryCLI.Export(cmd.Context(), day, exportKind)
			if err != nil {
				return err
			}
			verb := "updated"
			if out.Created {
				verb = "created"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, out.Path)
			return nil
		},
	}
	export.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	export.Flags().StringVar(&exportKind, "kind", "all", "fetal|contraction|all")

	history.AddCommand(list, export)
	return history
}

// readLines signals once per input line until ctx ends or input closes.
func readLines(ctx context.Context, r io.Reader) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
