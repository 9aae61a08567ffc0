package strategy

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/derekprior/mixer/internal/config"
	"github.com/derekprior/mixer/internal/schedule"
)

// Get returns the round generator named by cfg.Strategy.
func Get(cfg *config.Config, log logrus.FieldLogger) (schedule.Generator, error) {
	switch cfg.Strategy {
	case "random_search":
		return &RandomSearch{
			Attempts: cfg.Attempts,
			Workers:  cfg.Workers,
			Seed:     cfg.Seed,
			Log:      log,
		}, nil
	case "greedy":
		return &Greedy{Seed: cfg.Seed, Log: log}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", cfg.Strategy)
	}
}

// roundSeed derives the random source for one round attempt so that each
// attempt is reproducible on its own, whatever else runs.
func roundSeed(seed int64, round, attempt int) int64 {
	return seed + int64(round)<<20 + int64(attempt)
}

func orDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
