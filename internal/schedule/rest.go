package schedule

import (
	"math/rand"
	"slices"

	"github.com/derekprior/mixer/internal/roster"
)

// RestRotation decides who sits out a round. Each team's players are put in
// a random order once, and teams are shuffled once, so one rotation slot
// holds one player per team. The slots repeat in the same order, which means
// everybody rests once before anybody rests twice.
type RestRotation struct {
	cycle []*roster.Player
	queue []*roster.Player
}

func NewRestRotation(r *roster.Roster, rng *rand.Rand) *RestRotation {
	orders := make([][]*roster.Player, len(r.Teams))
	depth := 0
	for i, team := range r.Teams {
		order := slices.Clone(team.Players)
		rng.Shuffle(len(order), func(a, b int) {
			order[a], order[b] = order[b], order[a]
		})
		orders[i] = order
		depth = max(depth, len(order))
	}
	rng.Shuffle(len(orders), func(a, b int) {
		orders[a], orders[b] = orders[b], orders[a]
	})

	var cycle []*roster.Player
	for slot := range depth {
		for _, order := range orders {
			if slot < len(order) {
				cycle = append(cycle, order[slot])
			}
		}
	}
	return &RestRotation{cycle: cycle, queue: slices.Clone(cycle)}
}

// Next pops the next n players off the rotation. n is capped at the roster
// size; an exhausted rotation starts over from the first slot.
func (rr *RestRotation) Next(n int) []*roster.Player {
	n = min(n, len(rr.cycle))
	if n <= 0 {
		return nil
	}
	resting := make([]*roster.Player, 0, n)
	for len(resting) < n {
		if len(rr.queue) == 0 {
			rr.queue = slices.Clone(rr.cycle)
		}
		p := rr.queue[0]
		rr.queue = rr.queue[1:]
		if slices.Contains(resting, p) {
			continue
		}
		resting = append(resting, p)
	}
	return resting
}

// Pending returns how many players are left before the rotation restarts.
func (rr *RestRotation) Pending() int {
	return len(rr.queue)
}
