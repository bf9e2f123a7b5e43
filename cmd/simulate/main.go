package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/internal/simulate"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// Default configuration constants.
const (
	defaultRunners = 60
	defaultTop     = 10
	defaultTimeout = 10 * time.Second
	defaultRunTime = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the service")
		division = flag.String("division", "Boys", "Event division")
		distance = flag.String("distance", "3km", "Event distance")
		ageGroup = flag.String("age", "14", "Age group (12-18 or Open)")
		runners  = flag.Int("runners", defaultRunners, "Number of finishes to post")
		workers  = flag.Int("workers", runtime.NumCPU(), "Concurrent timing desks")
		pace     = flag.Duration("pace", 0, "Pause between finishes per desk, e.g. 500ms for a watchable race")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		top      = flag.Int("top", defaultTop, "Leaderboard rows to verify")
		seed     = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for the generated field")
		end      = flag.Bool("end", false, "End the event after verifying")
		format   = flag.String("log-format", "text", "Log format: text or json")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get().Named("simulate")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTime)
	defer cancel()

	cfg := &simulate.Config{
		BaseURL:  *baseURL,
		Division: *division,
		Distance: *distance,
		AgeGroup: *ageGroup,
		Runners:  *runners,
		Workers:  *workers,
		Pace:     *pace,
		Timeout:  *timeout,
		Top:      *top,
		Seed:     *seed,
		EndEvent: *end,
	}
	if _, err := simulate.Run(ctx, cfg, log); err != nil {
		log.Error(ctx, "simulation failed", logger.Error(err))
		os.Exit(1)
	}
}
