package schedule

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/derekprior/mixer/internal/config"
	"github.com/derekprior/mixer/internal/roster"
)

// fillGenerator seats active players in roster order through Assign over
// every match of the round.
type fillGenerator struct {
	failOn int
}

func (g fillGenerator) GenerateRound(t *Tournament, track string, resting []*roster.Player) (*Round, error) {
	r := t.NewRound(track)
	if r.Number == g.failOn {
		return nil, errors.New("boom")
	}
	r.Resting = resting
	for range t.MatchesPerRound {
		r.AddMatch(t.Capacity)
	}
	for _, p := range Active(t.Roster, resting) {
		if _, err := Assign(t.Ledger(), p, r.Matches); err != nil {
			return nil, err
		}
	}
	return r, t.Commit(r)
}

func schedulerTestConfig() *config.Config {
	return &config.Config{
		Name:            "Winter Champs",
		Strategy:        "random_search",
		MatchCapacity:   4,
		MatchesPerRound: 4,
		Attempts:        10,
		Workers:         1,
		Teams:           testTeams(),
		Rounds: []config.Round{
			{Track: "Monza", Players: 16},
			{Track: "Suzuka", Players: 12},
			{Track: "Spa", Players: 12},
		},
		Guidelines: config.Guidelines{MaxImbalance: 100},
	}
}

func TestSchedule(t *testing.T) {
	cfg := schedulerTestConfig()
	tr, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}
	rest := NewRestRotation(tr.Roster, rand.New(rand.NewSource(cfg.Seed)))

	result, err := Schedule(cfg, tr, fillGenerator{}, rest)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}

	t.Run("all rounds committed", func(t *testing.T) {
		if len(tr.Rounds) != 3 {
			t.Fatalf("rounds = %d, want 3", len(tr.Rounds))
		}
		for i, r := range tr.Rounds {
			if r.Number != i+1 || r.Track != cfg.Rounds[i].Track {
				t.Errorf("round %d = %d %s", i, r.Number, r.Track)
			}
		}
	})

	t.Run("resting follows the round size", func(t *testing.T) {
		if len(tr.Rounds[0].Resting) != 0 {
			t.Errorf("round 1 rests %d, want 0", len(tr.Rounds[0].Resting))
		}
		for _, r := range tr.Rounds[1:] {
			if len(r.Resting) != 4 {
				t.Errorf("round %d rests %d, want 4", r.Number, len(r.Resting))
			}
			if got := len(r.Participants()); got != 12 {
				t.Errorf("round %d seats %d, want 12", r.Number, got)
			}
		}
	})

	t.Run("resting players never play", func(t *testing.T) {
		for _, r := range tr.Rounds {
			seated := make(map[*roster.Player]bool)
			for _, p := range r.Participants() {
				seated[p] = true
			}
			for _, p := range r.Resting {
				if seated[p] {
					t.Errorf("round %d: resting %s is seated", r.Number, p.Name)
				}
			}
		}
	})

	t.Run("no teammates share a match", func(t *testing.T) {
		for _, r := range tr.Rounds {
			for _, m := range r.Matches {
				teams := make(map[string]bool)
				for _, p := range m.Participants {
					if teams[p.Team] {
						t.Errorf("round %d: %s has two %s players", r.Number, m, p.Team)
					}
					teams[p.Team] = true
				}
			}
		}
	})

	t.Run("metrics", func(t *testing.T) {
		rested, played := 0, 0
		for _, m := range result.PlayerMetrics {
			rested += m.Rested
			played += m.Played
			if m.Unseated != 0 {
				t.Errorf("unseated = %d, want 0", m.Unseated)
			}
		}
		if rested != 8 {
			t.Errorf("total rested = %d, want 8", rested)
		}
		if played != 16+12+12 {
			t.Errorf("total played = %d, want 40", played)
		}
		if len(result.Warnings) != 0 {
			t.Errorf("warnings = %v", result.Warnings)
		}
	})
}

func TestScheduleImbalanceWarnings(t *testing.T) {
	cfg := schedulerTestConfig()
	cfg.Rounds = cfg.Rounds[:1]
	cfg.Guidelines.MaxImbalance = 0
	tr, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}

	result, err := Schedule(cfg, tr, fillGenerator{}, NewRestRotation(tr.Roster, rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	// One full round leaves every player with 3 of 12 opponents met.
	if len(result.Warnings) != 16 {
		t.Fatalf("warnings = %d, want 16", len(result.Warnings))
	}
	if !strings.Contains(result.Warnings[0], "imbalance 1 exceeds 0") {
		t.Errorf("warning = %q", result.Warnings[0])
	}
	for name, m := range result.PlayerMetrics {
		if len(m.Violations) != 1 {
			t.Errorf("%s violations = %d, want 1", name, len(m.Violations))
		}
	}
}

func TestScheduleUnseatedWarnings(t *testing.T) {
	cfg := schedulerTestConfig()
	cfg.Rounds = cfg.Rounds[:1]
	tr, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}

	// Only seat the first team.
	gen := generatorFunc(func(t *Tournament, track string, resting []*roster.Player) (*Round, error) {
		r := t.NewRound(track)
		for _, p := range t.Roster.Teams[0].Players {
			r.AddMatch(t.Capacity).AddParticipant(p)
		}
		return r, t.Commit(r)
	})

	result, err := Schedule(cfg, tr, gen, NewRestRotation(tr.Roster, rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if len(result.Warnings) != 12 {
		t.Errorf("warnings = %d, want 12", len(result.Warnings))
	}
	if got := result.PlayerMetrics["Alice"].Unseated; got != 1 {
		t.Errorf("Alice unseated = %d, want 1", got)
	}
}

type generatorFunc func(t *Tournament, track string, resting []*roster.Player) (*Round, error)

func (f generatorFunc) GenerateRound(t *Tournament, track string, resting []*roster.Player) (*Round, error) {
	return f(t, track, resting)
}

func TestSchedulePartialResult(t *testing.T) {
	cfg := schedulerTestConfig()
	tr, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}

	result, err := Schedule(cfg, tr, fillGenerator{failOn: 2}, NewRestRotation(tr.Roster, rand.New(rand.NewSource(1))))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "round 2 (Suzuka)") {
		t.Errorf("error = %q, want it to name the round", err)
	}
	if result == nil || len(result.Tournament.Rounds) != 1 {
		t.Fatalf("partial result should hold the first round")
	}
}

func TestFromConfigSeedsRounds(t *testing.T) {
	cfg := schedulerTestConfig()
	cfg.SeedRounds = []config.SeedRound{{Track: "Mexico", Matches: [][]string{{"Alice", "Erin", "Ivan", "Olivia"}}}}
	tr, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}

	result, err := Schedule(cfg, tr, fillGenerator{}, NewRestRotation(tr.Roster, rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	if len(tr.Rounds) != 4 || tr.Rounds[0].Track != "Mexico" || tr.Rounds[1].Number != 2 {
		t.Errorf("rounds = %d, first %q", len(tr.Rounds), tr.Rounds[0].Track)
	}
	// The seed round only seats four players; that is not a warning.
	for _, w := range result.Warnings {
		if strings.Contains(w, "Mexico") {
			t.Errorf("unexpected warning for seed round: %s", w)
		}
	}
}
