package schedule

import (
	"fmt"
	"math"

	"github.com/derekprior/mixer/internal/balance"
	"github.com/derekprior/mixer/internal/ledger"
	"github.com/derekprior/mixer/internal/roster"
)

// preference scores how much p would like to join m; lower is better.
// The ceiling term is the same for every match, so it mostly matters when
// comparing matches of different sizes.
func preference(l *ledger.Ledger, p *roster.Player, m *Match, ceiling int) float64 {
	projected := float64(balance.ProjectedImbalance(l, p, m.Participants))
	return (projected + float64(ceiling)/2) / float64(max(1, len(m.Participants)))
}

// Assign adds p to the candidate match that best keeps p's meetings
// balanced and returns it. Matches already holding one of p's teammates, or
// full, are never chosen. Ties go to the earliest candidate. Only
// committed history in l is consulted.
func Assign(l *ledger.Ledger, p *roster.Player, candidates []*Match) (*Match, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate matches for %s", ErrNoEligibleMatch, p)
	}

	ceiling := balance.RaisesCeiling(l, p)
	var best *Match
	bestScore := math.MaxFloat64
	for _, m := range candidates {
		if m.HasTeam(p.Team) || m.Full() {
			continue
		}
		if score := preference(l, p, m, ceiling); score < bestScore {
			bestScore = score
			best = m
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: all %d candidate matches for %s are full or already have a %s player",
			ErrNoEligibleMatch, len(candidates), p, p.Team)
	}
	if err := best.AddParticipant(p); err != nil {
		return nil, err
	}
	return best, nil
}

// Active returns the roster minus the resting players, in roster order.
func Active(r *roster.Roster, resting []*roster.Player) []*roster.Player {
	skip := make(map[*roster.Player]bool, len(resting))
	for _, p := range resting {
		skip[p] = true
	}
	active := make([]*roster.Player, 0, r.Size())
	for _, p := range r.Players {
		if !skip[p] {
			active = append(active, p)
		}
	}
	return active
}

// CheckSeatable reports ErrUnseatable when the active players of a round
// could not all be seated in t's matches under any assignment.
func CheckSeatable(t *Tournament, resting []*roster.Player) error {
	active := Active(t.Roster, resting)
	if len(active) == 0 {
		return fmt.Errorf("%w: every player is resting", ErrUnseatable)
	}
	if t.MatchesPerRound < 1 {
		return fmt.Errorf("%w: no matches per round", ErrUnseatable)
	}
	if seats := t.MatchesPerRound * t.Capacity; len(active) > seats {
		return fmt.Errorf("%w: %d active players but only %d seats (%d matches of %d)",
			ErrUnseatable, len(active), seats, t.MatchesPerRound, t.Capacity)
	}
	perTeam := make(map[string]int)
	for _, p := range active {
		perTeam[p.Team]++
	}
	for _, team := range t.Roster.Teams {
		if perTeam[team.Name] > t.MatchesPerRound {
			return fmt.Errorf("%w: team %s has %d active players but there are only %d matches",
				ErrUnseatable, team.Name, perTeam[team.Name], t.MatchesPerRound)
		}
	}
	return nil
}
