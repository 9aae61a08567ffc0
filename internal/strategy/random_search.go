package strategy

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/derekprior/mixer/internal/balance"
	"github.com/derekprior/mixer/internal/roster"
	"github.com/derekprior/mixer/internal/schedule"
)

// RandomSearch builds a round by trying many shuffled assignments and
// keeping the one with the lowest balance score. It is a best-of-N
// heuristic: more attempts never make the result worse, but nothing
// guarantees the most balanced round possible is found.
type RandomSearch struct {
	Attempts int
	// Workers is the number of attempts run at once. It never changes the
	// outcome, only how long it takes.
	Workers int
	Seed    int64
	Log     logrus.FieldLogger
}

// trial is one attempt, captured by value so nothing of it is shared with
// the tournament.
type trial struct {
	matches [][]*roster.Player
	skipped int
	score   float64
}

// better orders trials by players left unseated, then score. Comparing
// score alone would let a trial with gaps win on a lighter ledger.
func (a trial) better(b trial) bool {
	if a.skipped != b.skipped {
		return a.skipped < b.skipped
	}
	return a.score < b.score
}

func (s *RandomSearch) GenerateRound(t *schedule.Tournament, track string, resting []*roster.Player) (*schedule.Round, error) {
	if err := schedule.CheckSeatable(t, resting); err != nil {
		return nil, err
	}

	log := orDiscard(s.Log)
	number := len(t.Rounds) + 1
	attempts := max(1, s.Attempts)
	skip := make(map[*roster.Player]bool, len(resting))
	for _, p := range resting {
		skip[p] = true
	}

	trials := make([]trial, attempts)
	var g errgroup.Group
	g.SetLimit(max(1, s.Workers))
	for attempt := range attempts {
		g.Go(func() error {
			trials[attempt] = s.attempt(t, number, attempt, skip)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := 0
	for i, tr := range trials {
		if i == 0 || tr.better(trials[best]) {
			best = i
			log.WithFields(logrus.Fields{
				"round":   number,
				"attempt": i,
				"score":   tr.score,
				"skipped": tr.skipped,
			}).Debug("improved")
		}
	}

	r := t.NewRound(track)
	r.Resting = resting
	for _, players := range trials[best].matches {
		m := r.AddMatch(t.Capacity)
		for _, p := range players {
			if err := m.AddParticipant(p); err != nil {
				return nil, fmt.Errorf("round %d: %w", number, err)
			}
		}
	}
	if err := t.Commit(r); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"round":    number,
		"track":    track,
		"attempts": attempts,
		"best":     best,
		"score":    trials[best].score,
		"resting":  len(resting),
		"unseated": trials[best].skipped,
	}).Info("round generated")
	return r, nil
}

// attempt runs one shuffled trial. It reads the committed ledger but only
// ever records into its own clone.
func (s *RandomSearch) attempt(t *schedule.Tournament, number, attempt int, resting map[*roster.Player]bool) trial {
	rng := rand.New(rand.NewSource(roundSeed(s.Seed, number, attempt)))

	matches := make([]*schedule.Match, t.MatchesPerRound)
	for i := range matches {
		matches[i] = schedule.NewMatch(t.Capacity)
	}

	teams := slices.Clone(t.Roster.Teams)
	rng.Shuffle(len(teams), func(i, j int) {
		teams[i], teams[j] = teams[j], teams[i]
	})

	var tr trial
	for _, team := range teams {
		players := slices.Clone(team.Players)
		rng.Shuffle(len(players), func(i, j int) {
			players[i], players[j] = players[j], players[i]
		})
		for _, p := range players {
			if resting[p] {
				continue
			}
			next := leastLoaded(matches)
			if _, err := schedule.Assign(t.Ledger(), p, []*schedule.Match{next}); err != nil {
				// Leave the gap; better() ranks trials with gaps last.
				tr.skipped++
			}
		}
	}

	l := t.Ledger().Clone()
	tr.matches = make([][]*roster.Player, len(matches))
	for i, m := range matches {
		l.Record(m.Participants)
		tr.matches[i] = m.Participants
	}
	tr.score = balance.GlobalScore(l)
	return tr
}

// leastLoaded returns the first match holding the fewest participants.
func leastLoaded(matches []*schedule.Match) *schedule.Match {
	best := matches[0]
	for _, m := range matches[1:] {
		if len(m.Participants) < len(best.Participants) {
			best = m
		}
	}
	return best
}
