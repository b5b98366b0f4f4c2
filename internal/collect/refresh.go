package collect

import (
	"context"
	"sync"
)

// Job is one unit of collection work for RefreshAll.
type Job func(ctx context.Context) Result

// RefreshAll runs jobs on a bounded worker pool and returns their Results
// in job order. Individual failures land on their Result and never stop
// the other jobs.
func (s *Service) RefreshAll(ctx context.Context, jobs []Job) []Result {
	if len(jobs) == 0 {
		return nil
	}

	workers := s.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	results := make([]Result, len(jobs))
	work := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i] = jobs[i](ctx)
			}
		}()
	}
	for i := range jobs {
		work <- i
	}
	close(work)
	wg.Wait()

	s.logger.Info("Refresh finished", "jobs", len(jobs), "failed", countFailed(results))
	return results
}

// DefaultJobs builds the standard refresh set: current-season batting and
// pitching plus today's pitch events, all with default parameters.
func (s *Service) DefaultJobs() []Job {
	return []Job{
		func(ctx context.Context) Result { return s.CollectBatting(ctx, BattingParams{}) },
		func(ctx context.Context) Result { return s.CollectPitching(ctx, PitchingParams{}) },
		func(ctx context.Context) Result { return s.CollectPitchEvents(ctx, EventParams{}) },
	}
}

func countFailed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}
