// Package collect orchestrates collection runs: fetch from a provider,
// validate the batch, write the window, then record the run with the
// tracker and the history store.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Collabos-llc/mlb-data-service/internal/history"
	"github.com/Collabos-llc/mlb-data-service/internal/quality"
	"github.com/Collabos-llc/mlb-data-service/internal/schema"
	"github.com/Collabos-llc/mlb-data-service/internal/track"
)

// Default parameter values applied when a caller leaves them zero.
const (
	DefaultMinPA = 10
	DefaultMinIP = 5
)

// BattingProvider fetches season batting lines.
type BattingProvider interface {
	BattingSeason(ctx context.Context, season, minPA int) ([]schema.Row, error)
}

// PitchingProvider fetches season pitching lines.
type PitchingProvider interface {
	PitchingSeason(ctx context.Context, season, minIP int) ([]schema.Row, error)
}

// EventProvider fetches pitch-level events for an inclusive date range.
type EventProvider interface {
	PitchEvents(ctx context.Context, start, end time.Time) ([]schema.Row, error)
}

// Providers bundles the external sources a Service collects from.
type Providers struct {
	Batting  BattingProvider
	Pitching PitchingProvider
	Events   EventProvider
}

// Writer is the storage surface a collection run needs.
type Writer interface {
	ReplaceSeason(ctx context.Context, d *schema.Descriptor, season int, rows []schema.Row) (int64, error)
	UpsertPitchEvents(ctx context.Context, rows []schema.Row) (int64, error)
}

// RunLog persists finished runs. History failures are logged by the
// Service, never propagated.
type RunLog interface {
	Record(ctx context.Context, run history.Run) error
}

// Service runs collections. Its public methods never panic and report
// run-level failures on the Result instead of an error return.
type Service struct {
	providers Providers
	validator *quality.Validator
	writer    Writer
	tracker   *track.Tracker
	runLog    RunLog
	workers   int
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires a collection Service. workers bounds RefreshAll
// concurrency; values below 1 fall back to 3.
func NewService(providers Providers, validator *quality.Validator, writer Writer,
	tracker *track.Tracker, runLog RunLog, workers int, logger *slog.Logger) *Service {
	if workers < 1 {
		workers = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		providers: providers,
		validator: validator,
		writer:    writer,
		tracker:   tracker,
		runLog:    runLog,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
	}
}

// BattingParams selects a batting collection. Zero values mean the current
// year and the default plate-appearance qualifier.
type BattingParams struct {
	Season int `json:"season"`
	MinPA  int `json:"min_pa"`
}

func (p BattingParams) withDefaults(now time.Time) BattingParams {
	if p.Season == 0 {
		p.Season = now.Year()
	}
	if p.MinPA == 0 {
		p.MinPA = DefaultMinPA
	}
	return p
}

// PitchingParams selects a pitching collection. Zero values mean the
// current year and the default innings qualifier.
type PitchingParams struct {
	Season int `json:"season"`
	MinIP  int `json:"min_ip"`
}

func (p PitchingParams) withDefaults(now time.Time) PitchingParams {
	if p.Season == 0 {
		p.Season = now.Year()
	}
	if p.MinIP == 0 {
		p.MinIP = DefaultMinIP
	}
	return p
}

// EventParams selects an inclusive pitch-event date range. Zero times mean
// today.
type EventParams struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

func (p EventParams) withDefaults(now time.Time) EventParams {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if p.Start.IsZero() {
		p.Start = today
	}
	if p.End.IsZero() {
		p.End = today
	}
	return p
}

// CollectBatting fetches one season of batting lines and replaces that
// season in storage.
func (s *Service) CollectBatting(ctx context.Context, p BattingParams) Result {
	p = p.withDefaults(s.now())
	return s.run(ctx, schema.Batting, strconv.Itoa(p.Season),
		func(ctx context.Context) ([]schema.Row, error) {
			return s.providers.Batting.BattingSeason(ctx, p.Season, p.MinPA)
		},
		func(ctx context.Context, rows []schema.Row) (int64, error) {
			return s.writer.ReplaceSeason(ctx, schema.Batting, p.Season, rows)
		})
}

// CollectPitching fetches one season of pitching lines and replaces that
// season in storage.
func (s *Service) CollectPitching(ctx context.Context, p PitchingParams) Result {
	p = p.withDefaults(s.now())
	return s.run(ctx, schema.Pitching, strconv.Itoa(p.Season),
		func(ctx context.Context) ([]schema.Row, error) {
			return s.providers.Pitching.PitchingSeason(ctx, p.Season, p.MinIP)
		},
		func(ctx context.Context, rows []schema.Row) (int64, error) {
			return s.writer.ReplaceSeason(ctx, schema.Pitching, p.Season, rows)
		})
}

// CollectPitchEvents fetches pitch events for a date range and upserts them
// on their natural key.
func (s *Service) CollectPitchEvents(ctx context.Context, p EventParams) Result {
	p = p.withDefaults(s.now())
	window := eventWindow(p.Start, p.End)
	if p.Start.After(p.End) {
		return s.reject(ctx, schema.PitchEvents, window,
			fmt.Errorf("start date %s is after end date %s",
				p.Start.Format("2006-01-02"), p.End.Format("2006-01-02")))
	}
	return s.run(ctx, schema.PitchEvents, window,
		func(ctx context.Context) ([]schema.Row, error) {
			return s.providers.Events.PitchEvents(ctx, p.Start, p.End)
		},
		func(ctx context.Context, rows []schema.Row) (int64, error) {
			return s.writer.UpsertPitchEvents(ctx, rows)
		})
}

// run drives one collection through the lifecycle. All bookkeeping happens
// in the deferred block so success, failure, and panic paths are recorded
// identically.
func (s *Service) run(ctx context.Context, d *schema.Descriptor, window string,
	fetch func(context.Context) ([]schema.Row, error),
	write func(context.Context, []schema.Row) (int64, error)) (res Result) {

	start := s.now()
	res = Result{Source: d.Source, Window: window, Status: StatePending}
	logger := s.logger.With("source", d.Source, "window", window)

	defer func() {
		if r := recover(); r != nil {
			res = fail(res, kindForState(res.Status), fmt.Errorf("panic: %v", r))
			logger.Error("Collection run panicked", "panic", r)
		}
		res.Duration = s.now().Sub(start)
		s.bookkeep(ctx, res, start)
		if res.Failed() {
			logger.Error("Collection failed",
				"kind", res.ErrKind, "error", res.Err, "duration", res.Duration)
		} else {
			logger.Info("Collection completed",
				"records", res.Records, "issues", len(res.Issues), "duration", res.Duration)
		}
	}()

	logger.Info("Collecting...")

	res.Status = StateFetching
	rows, err := fetch(ctx)
	if err != nil {
		return fail(res, ErrKindProvider, err)
	}
	if len(rows) == 0 {
		// Empty fetch completes without writing: the previous window's
		// data stays in place.
		logger.Info("Provider returned no rows; keeping existing window")
		res.Status = StateCompleted
		return res
	}

	res.Status = StateValidating
	report := s.validator.Check(rows, d)
	res.Issues = report.Issues
	if len(report.Issues) > 0 {
		logger.Warn("Validation issues",
			"count", len(report.Issues), "issues", strings.Join(report.Issues, "; "))
	}

	res.Status = StateWriting
	written, err := write(ctx, rows)
	if err != nil {
		return fail(res, ErrKindStorage, err)
	}
	res.Records = int(written)
	res.Status = StateCompleted
	return res
}

// reject records a run that failed parameter checks before fetching.
func (s *Service) reject(ctx context.Context, d *schema.Descriptor, window string, err error) Result {
	res := Result{
		Source: d.Source, Window: window,
		Status: StateFailed, ErrKind: ErrKindConfig, Err: err.Error(),
	}
	s.logger.Error("Collection rejected", "source", d.Source, "window", window, "error", err)
	s.bookkeep(ctx, res, s.now())
	return res
}

// bookkeep records the finished run with the tracker and the history store.
func (s *Service) bookkeep(ctx context.Context, res Result, start time.Time) {
	s.tracker.RecordOperation(res.Source, res.Duration, res.Records)
	if !res.Failed() {
		s.tracker.MarkFresh(res.Source)
	}

	run := history.Run{
		Source:       res.Source,
		Window:       res.Window,
		StartTime:    start,
		EndTime:      start.Add(res.Duration),
		Status:       string(res.Status),
		Records:      res.Records,
		ErrorMessage: res.Err,
		DurationSecs: res.Duration.Seconds(),
	}
	if err := s.runLog.Record(ctx, run); err != nil {
		s.logger.Warn("Record run history", "source", res.Source, "error", err)
	}
}

func fail(res Result, kind string, err error) Result {
	res.Status = StateFailed
	res.ErrKind = kind
	res.Err = err.Error()
	return res
}

// kindForState classifies a panic by the phase it interrupted.
func kindForState(state State) string {
	if state == StateFetching {
		return ErrKindProvider
	}
	return ErrKindStorage
}

// eventWindow renders an inclusive date range as a window label.
func eventWindow(start, end time.Time) string {
	a, b := start.Format("2006-01-02"), end.Format("2006-01-02")
	if a == b {
		return a
	}
	return a + ".." + b
}
