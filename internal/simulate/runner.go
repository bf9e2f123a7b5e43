package simulate

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// Run simulates one race against cfg.BaseURL and verifies the outcome.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting race simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("runners", cfg.Runners),
		logger.Int("workers", cfg.Workers),
		logger.Duration("pace", cfg.Pace))

	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	ev, err := client.CreateEvent(ctx, cfg.Division, cfg.Distance, cfg.AgeGroup)
	if err != nil {
		return stats, err
	}
	stats.EventID, stats.EventName = ev.ID, ev.Name
	log.Info(ctx, "event started", logger.String("eventID", ev.ID), logger.String("name", ev.Name))

	finishes := generateFinishes(cfg.Runners, cfg.Distance, cfg.Seed)
	stats.Generated = len(finishes)

	accepted := submitFinishes(ctx, client, cfg, ev.ID, finishes, stats, log)

	board, err := client.Leaderboard(ctx, cfg.Top)
	if err != nil {
		return stats, err
	}
	stats.BoardRows, stats.BoardTotal = len(board.Rows), board.Total

	if err := verifyBoard(ev.ID, accepted, board, cfg.Top); err != nil {
		return stats, err
	}
	log.Info(ctx, "leaderboard verified", logger.Int("rows", len(board.Rows)))
	displayPodium(ctx, log, board)

	if cfg.EndEvent {
		if err := client.EndEvent(ctx, ev.ID); err != nil {
			return stats, err
		}
		log.Info(ctx, "event ended", logger.String("eventID", ev.ID))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	if stats.Duration > 0 {
		stats.PostsPerSecs = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// submitFinishes posts finishes from cfg.Workers desks and returns the
// ones the service accepted.
func submitFinishes(ctx context.Context, client *Client, cfg *Config, eventID string, finishes []Finish, stats *Stats, log logger.Logger) []Finish {
	var (
		submitted, failed int64
		mu                sync.Mutex
		accepted          = make([]Finish, 0, len(finishes))
		wg                sync.WaitGroup
	)

	type job struct {
		index  int
		finish Finish
	}
	jobs := make(chan job, cfg.Workers*2)

	workers := max(1, min(cfg.Workers, len(finishes)))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				key := eventID + "-" + strconv.Itoa(j.index)
				err := client.PostResult(ctx, eventID, j.finish, key)
				atomic.AddInt64(&submitted, 1)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					log.Warn(ctx, "finish rejected",
						logger.String("runner", j.finish.RunnerName),
						logger.Error(err))
				} else {
					mu.Lock()
					accepted = append(accepted, j.finish)
					mu.Unlock()
				}
				if cfg.Pace > 0 {
					select {
					case <-ctx.Done():
					case <-time.After(cfg.Pace):
					}
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, f := range finishes {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{index: i, finish: f}:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Failed = int(atomic.LoadInt64(&failed))
	stats.Successful = stats.Submitted - stats.Failed
	log.Info(ctx, "finishes submitted",
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed))
	return accepted
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.String("event", stats.EventName),
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("boardRows", stats.BoardRows),
		logger.Int("boardTotal", stats.BoardTotal),
		logger.Duration("duration", stats.Duration),
		logger.Float64("postsPerSecond", stats.PostsPerSecs))
}
