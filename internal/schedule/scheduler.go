package schedule

import (
	"fmt"

	"github.com/derekprior/mixer/internal/balance"
	"github.com/derekprior/mixer/internal/config"
	"github.com/derekprior/mixer/internal/roster"
)

// Generator builds one round from the players who are not resting and
// commits it to t.
type Generator interface {
	GenerateRound(t *Tournament, track string, resting []*roster.Player) (*Round, error)
}

// PlayerMetrics holds per-player schedule statistics.
type PlayerMetrics struct {
	Played     int
	Rested     int
	Unseated   int // generated rounds where the player was active but not placed
	Imbalance  int
	Violations []string
}

// Result is the output of the scheduling process.
type Result struct {
	Tournament    *Tournament
	Summary       balance.Summary
	Warnings      []string
	PlayerMetrics map[string]*PlayerMetrics
}

// Schedule generates every round in cfg.Rounds in order, resting players
// from rest whenever a round wants fewer players than the roster holds.
// On failure, returns a Result for the rounds committed so far alongside
// the error.
func Schedule(cfg *config.Config, t *Tournament, gen Generator, rest *RestRotation) (*Result, error) {
	first := len(t.Rounds)
	for _, plan := range cfg.Rounds {
		var resting []*roster.Player
		if need := t.Roster.Size() - plan.Players; need > 0 {
			resting = rest.Next(need)
		}
		if _, err := gen.GenerateRound(t, plan.Track, resting); err != nil {
			return buildResult(cfg, t, first), fmt.Errorf("generating round %d (%s): %w", len(t.Rounds)+1, plan.Track, err)
		}
	}
	return buildResult(cfg, t, first), nil
}

func buildResult(cfg *config.Config, t *Tournament, first int) *Result {
	summary := balance.Summarize(t.Ledger())
	res := &Result{
		Tournament:    t,
		Summary:       summary,
		PlayerMetrics: make(map[string]*PlayerMetrics),
	}

	for _, row := range summary.Rows {
		res.PlayerMetrics[row.Player.Name] = &PlayerMetrics{
			Played:    row.Played,
			Imbalance: row.Imbalance,
		}
	}

	for _, r := range t.Rounds[first:] {
		seated := make(map[*roster.Player]bool)
		for _, p := range r.Participants() {
			seated[p] = true
		}
		for _, p := range r.Resting {
			res.PlayerMetrics[p.Name].Rested++
		}
		for _, p := range Active(t.Roster, r.Resting) {
			if seated[p] {
				continue
			}
			m := res.PlayerMetrics[p.Name]
			m.Unseated++
			w := fmt.Sprintf("round %d (%s): %s was not seated", r.Number, r.Track, p)
			res.Warnings = append(res.Warnings, w)
			m.Violations = append(m.Violations, w)
		}
	}

	for _, row := range summary.Rows {
		if row.Imbalance <= cfg.Guidelines.MaxImbalance {
			continue
		}
		w := fmt.Sprintf("%s imbalance %d exceeds %d", row.Player, row.Imbalance, cfg.Guidelines.MaxImbalance)
		res.Warnings = append(res.Warnings, w)
		m := res.PlayerMetrics[row.Player.Name]
		m.Violations = append(m.Violations, w)
	}

	return res
}
