// Command ingest is the MLB data collection CLI.
//
// Usage:
//
//	mlb-ingest migrate
//	mlb-ingest batting --season 2025 --min-pa 100
//	mlb-ingest pitching --season 2025 --min-ip 50
//	mlb-ingest statcast --start 2025-06-01 --end 2025-06-03
//	mlb-ingest refresh
//	mlb-ingest status
//	mlb-ingest history --limit 20
//	mlb-ingest prune-events --before 2024-01-01
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Collabos-llc/mlb-data-service/internal/collect"
	"github.com/Collabos-llc/mlb-data-service/internal/config"
	"github.com/Collabos-llc/mlb-data-service/internal/db"
	"github.com/Collabos-llc/mlb-data-service/internal/history"
	"github.com/Collabos-llc/mlb-data-service/internal/maintenance"
	"github.com/Collabos-llc/mlb-data-service/internal/provider/fangraphs"
	"github.com/Collabos-llc/mlb-data-service/internal/provider/savant"
	"github.com/Collabos-llc/mlb-data-service/internal/quality"
	"github.com/Collabos-llc/mlb-data-service/internal/schema"
	"github.com/Collabos-llc/mlb-data-service/internal/store"
	"github.com/Collabos-llc/mlb-data-service/internal/track"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "mlb-ingest",
		Short: "MLB data collection CLI",
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(battingCmd())
	root.AddCommand(pitchingCmd())
	root.AddCommand(statcastCmd())
	root.AddCommand(refreshCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(pruneEventsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the stat tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			if err := schema.Migrate(ctx, pool, logger); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("Migration complete")
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// collection commands
// --------------------------------------------------------------------------

func battingCmd() *cobra.Command {
	var season, minPA int
	cmd := &cobra.Command{
		Use:   "batting",
		Short: "Collect FanGraphs season batting stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(func(ctx context.Context, d *deps) error {
				res := d.svc.CollectBatting(ctx, collect.BattingParams{Season: season, MinPA: minPA})
				return reportResult(res)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (0 = current)")
	cmd.Flags().IntVar(&minPA, "min-pa", 0,
		fmt.Sprintf("Minimum plate appearances (0 = default %d)", collect.DefaultMinPA))
	return cmd
}

func pitchingCmd() *cobra.Command {
	var season, minIP int
	cmd := &cobra.Command{
		Use:   "pitching",
		Short: "Collect FanGraphs season pitching stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(func(ctx context.Context, d *deps) error {
				res := d.svc.CollectPitching(ctx, collect.PitchingParams{Season: season, MinIP: minIP})
				return reportResult(res)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season year (0 = current)")
	cmd.Flags().IntVar(&minIP, "min-ip", 0,
		fmt.Sprintf("Minimum innings pitched (0 = default %d)", collect.DefaultMinIP))
	return cmd
}

func statcastCmd() *cobra.Command {
	var startStr, endStr string
	cmd := &cobra.Command{
		Use:   "statcast",
		Short: "Collect Statcast pitch events for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			var params collect.EventParams
			var err error
			if params.Start, err = parseDateFlag(startStr); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			if params.End, err = parseDateFlag(endStr); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			return runCollect(func(ctx context.Context, d *deps) error {
				return reportResult(d.svc.CollectPitchEvents(ctx, params))
			})
		},
	}
	cmd.Flags().StringVar(&startStr, "start", "", "Start date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&endStr, "end", "", "End date YYYY-MM-DD (default: today)")
	return cmd
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Collect all sources concurrently, then refresh planner stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(func(ctx context.Context, d *deps) error {
				start := time.Now()
				results := d.svc.RefreshAll(ctx, d.svc.DefaultJobs())

				failed := 0
				for _, res := range results {
					logger.Info("Refresh result", "summary", res.Summary())
					if res.Failed() {
						failed++
					}
				}
				if err := maintenance.AnalyzeStatTables(ctx, d.pool, logger); err != nil {
					logger.Warn("Planner stats refresh failed", "error", err)
				}
				logger.Info("Refresh finished",
					"jobs", len(results), "failed", failed,
					"duration", time.Since(start).Round(time.Second))
				if failed > 0 {
					return fmt.Errorf("%d of %d refresh jobs failed", failed, len(results))
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// status and history commands
// --------------------------------------------------------------------------

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show table coverage, freshness, and per-source run stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(func(ctx context.Context, d *deps) error {
				reader := store.NewReader(d.pool)
				stats, err := reader.Stats(ctx)
				if err != nil {
					return fmt.Errorf("read stats: %w", err)
				}
				fmt.Printf("Tables\n")
				fmt.Printf("  fangraphs_batting   %d rows\n", stats.BattingCount)
				fmt.Printf("  fangraphs_pitching  %d rows\n", stats.PitchingCount)
				fmt.Printf("  statcast            %d rows\n", stats.PitchEventCount)
				if stats.LatestSeason != nil {
					fmt.Printf("  latest season       %d\n", *stats.LatestSeason)
				}
				if stats.LatestGameDate != nil {
					fmt.Printf("  latest game date    %s\n", stats.LatestGameDate.Format("2006-01-02"))
				}

				writes, err := reader.LatestWrites(ctx)
				if err != nil {
					return fmt.Errorf("read latest writes: %w", err)
				}
				for source, last := range writes {
					d.tracker.MarkFreshAt(source, last)
				}
				fmt.Printf("\nFreshness\n")
				for _, source := range []string{"fangraphs_batting", "fangraphs_pitching", "statcast"} {
					f := d.tracker.Freshness(source)
					if f.LastSuccess.IsZero() {
						fmt.Printf("  %-20s %s\n", source, f.Status)
						continue
					}
					fmt.Printf("  %-20s %s (last write %s ago)\n",
						source, f.Status, f.Staleness.Round(time.Minute))
				}

				sourceStats, err := d.runs.SourceStats(ctx)
				if err != nil {
					return fmt.Errorf("read run stats: %w", err)
				}
				fmt.Printf("\nCollection runs\n")
				if len(sourceStats) == 0 {
					fmt.Printf("  none recorded\n")
				}
				for _, s := range sourceStats {
					fmt.Printf("  %-20s %d runs, %d ok, %d records, avg %.1fs\n",
						s.Source, s.Runs, s.Successes, s.TotalRecords, s.AvgDuration)
				}
				return nil
			})
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent collection runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			runs, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer runs.Close()

			recent, err := runs.Recent(ctx, limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(recent) == 0 {
				fmt.Println("No collection runs recorded")
				return nil
			}
			for _, run := range recent {
				line := fmt.Sprintf("%s  %-20s %-22s %-9s %6d records  %.1fs",
					run.StartTime.Format("2006-01-02 15:04:05"),
					run.Source, run.Window, run.Status, run.Records, run.DurationSecs)
				if run.ErrorMessage != "" {
					line += "  " + run.ErrorMessage
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to show")
	return cmd
}

// --------------------------------------------------------------------------
// prune-events command
// --------------------------------------------------------------------------

func pruneEventsCmd() *cobra.Command {
	var beforeStr string
	cmd := &cobra.Command{
		Use:   "prune-events",
		Short: "Delete pitch events older than a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if beforeStr == "" {
				return fmt.Errorf("--before is required")
			}
			before, err := parseDateFlag(beforeStr)
			if err != nil {
				return fmt.Errorf("invalid --before: %w", err)
			}
			return runCollect(func(ctx context.Context, d *deps) error {
				epoch := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
				deleted, err := d.writer.DeletePitchEventsRange(ctx, epoch, before)
				if err != nil {
					return fmt.Errorf("prune events: %w", err)
				}
				logger.Info("Pruned pitch events", "deleted", deleted, "before", beforeStr)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&beforeStr, "before", "", "Delete events with game_date before this date (YYYY-MM-DD)")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// deps bundles everything a collection command needs.
type deps struct {
	cfg     *config.Config
	pool    *db.Pool
	runs    *history.Store
	tracker *track.Tracker
	writer  *store.Writer
	svc     *collect.Service
}

// runCollect handles config loading, database and history connections, and
// context cancellation around one command.
func runCollect(fn func(ctx context.Context, d *deps) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	runs, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer runs.Close()

	tracker := track.New(cfg.Freshness)
	fg := fangraphs.NewClient(cfg.FanGraphsBaseURL, cfg.ProviderRPM, logger)
	providers := collect.Providers{
		Batting:  fg,
		Pitching: fg,
		Events:   savant.NewClient(cfg.SavantBaseURL, cfg.ProviderRPM, logger),
	}
	writer := store.NewWriter(pool, logger)
	svc := collect.NewService(providers, quality.New(), writer, tracker, runs, cfg.RefreshWorkers, logger)

	return fn(ctx, &deps{
		cfg:     cfg,
		pool:    pool,
		runs:    runs,
		tracker: tracker,
		writer:  writer,
		svc:     svc,
	})
}

// reportResult logs a run summary and turns failed runs into a non-zero
// exit for cron and scripts.
func reportResult(res collect.Result) error {
	logger.Info("Collection finished", "summary", res.Summary())
	for _, issue := range res.Issues {
		logger.Warn("Validation issue", "issue", issue)
	}
	if res.Failed() {
		return fmt.Errorf("collection failed (%s): %s", res.ErrKind, res.Err)
	}
	return nil
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
