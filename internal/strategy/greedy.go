package strategy

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/derekprior/mixer/internal/balance"
	"github.com/derekprior/mixer/internal/ledger"
	"github.com/derekprior/mixer/internal/roster"
	"github.com/derekprior/mixer/internal/schedule"
)

// Greedy builds a round in a single pass. Each match is opened by the
// player furthest behind on meetings together with the opponents they have
// met least, then everyone else is placed by Assign.
type Greedy struct {
	Seed int64
	Log  logrus.FieldLogger
}

func (s *Greedy) GenerateRound(t *schedule.Tournament, track string, resting []*roster.Player) (*schedule.Round, error) {
	if err := schedule.CheckSeatable(t, resting); err != nil {
		return nil, err
	}

	log := orDiscard(s.Log)
	l := t.Ledger()
	r := t.NewRound(track)
	r.Resting = resting
	rng := rand.New(rand.NewSource(roundSeed(s.Seed, r.Number, 0)))

	unmatched := schedule.Active(t.Roster, resting)
	sortByNeed(l, unmatched)

	for range t.MatchesPerRound {
		m := r.AddMatch(t.Capacity)
		if len(unmatched) == 0 {
			continue
		}
		p := unmatched[0]
		unmatched = unmatched[1:]
		if err := m.AddParticipant(p); err != nil {
			return nil, fmt.Errorf("round %d: %w", r.Number, err)
		}

		added, err := fillFromFloor(l, m, p, unmatched, rng)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", r.Number, err)
		}
		unmatched = slices.DeleteFunc(unmatched, func(q *roster.Player) bool { return slices.Contains(added, q) })
		log.WithFields(logrus.Fields{
			"round": r.Number,
			"match": m.String(),
		}).Debug("opened match")
		sortByNeed(l, unmatched)
	}

	for _, p := range unmatched {
		if _, err := schedule.Assign(l, p, r.Matches); err != nil {
			return nil, fmt.Errorf("round %d: %w", r.Number, err)
		}
	}
	if err := t.Commit(r); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"round":   r.Number,
		"track":   track,
		"resting": len(resting),
	}).Info("round generated")
	return r, nil
}

// sortByNeed orders players by their fewest meetings with any opponent,
// breaking ties toward players with many opponents at that floor.
func sortByNeed(l *ledger.Ledger, players []*roster.Player) {
	keys := make(map[*roster.Player]float64, len(players))
	for _, p := range players {
		keys[p] = float64(balance.Floor(l, p)) + 0.1/float64(max(1, balance.RaisesFloor(l, p)))
	}
	sort.SliceStable(players, func(i, j int) bool {
		return keys[players[i]] < keys[players[j]]
	})
}

// fillFromFloor adds the unmatched opponents p has met least to m, in
// random order, skipping anyone who would meet two or more participants
// already at their own ceiling. It returns the players it added.
func fillFromFloor(l *ledger.Ledger, m *schedule.Match, p *roster.Player, unmatched []*roster.Player, rng *rand.Rand) ([]*roster.Player, error) {
	meetings := l.Meetings(p)
	floor := balance.Floor(l, p)
	var candidates []*roster.Player
	for _, o := range unmatched {
		if c, ok := meetings[o.Name]; ok && c == floor {
			candidates = append(candidates, o)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	var added []*roster.Player
	for _, o := range candidates {
		if m.Full() {
			break
		}
		if m.HasTeam(o.Team) || ceilingHits(l, o, m.Participants) >= 2 {
			continue
		}
		if err := m.AddParticipant(o); err != nil {
			return nil, err
		}
		added = append(added, o)
	}
	return added, nil
}

// ceilingHits counts the participants o has already met as often as anyone,
// where meeting them again would widen o's imbalance.
func ceilingHits(l *ledger.Ledger, o *roster.Player, participants []*roster.Player) int {
	meetings := l.Meetings(o)
	if balance.Imbalance(l, o) == 0 {
		return 0
	}
	hi := 0
	for _, c := range meetings {
		hi = max(hi, c)
	}
	n := 0
	for _, q := range participants {
		if c, ok := meetings[q.Name]; ok && c == hi {
			n++
		}
	}
	return n
}
