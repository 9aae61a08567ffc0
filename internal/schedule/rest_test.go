package schedule

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/derekprior/mixer/internal/roster"
)

func TestRestRotation(t *testing.T) {
	tr := testTournament(t)

	t.Run("each slot rests one player per team", func(t *testing.T) {
		rr := NewRestRotation(tr.Roster, rand.New(rand.NewSource(1)))
		for round := range 4 {
			resting := rr.Next(4)
			teams := make(map[string]bool)
			for _, p := range resting {
				teams[p.Team] = true
			}
			if len(teams) != 4 {
				t.Errorf("round %d rests %v, want one player from each team", round+1, playerNames(resting))
			}
		}
	})

	t.Run("everyone rests once before anyone rests twice", func(t *testing.T) {
		rr := NewRestRotation(tr.Roster, rand.New(rand.NewSource(2)))
		seen := make(map[*roster.Player]int)
		var first []*roster.Player
		for round := range 4 {
			resting := rr.Next(4)
			if round == 0 {
				first = resting
			}
			for _, p := range resting {
				seen[p]++
			}
		}
		if len(seen) != 16 {
			t.Errorf("rested %d distinct players over a cycle, want 16", len(seen))
		}
		for p, n := range seen {
			if n != 1 {
				t.Errorf("%s rested %d times in one cycle", p.Name, n)
			}
		}
		if rr.Pending() != 0 {
			t.Errorf("Pending() = %d after a full cycle, want 0", rr.Pending())
		}
		if diff := cmp.Diff(playerNames(first), playerNames(rr.Next(4))); diff != "" {
			t.Errorf("second cycle does not repeat the first slot (-want +got):\n%s", diff)
		}
	})

	t.Run("same seed same rotation", func(t *testing.T) {
		a := NewRestRotation(tr.Roster, rand.New(rand.NewSource(3)))
		b := NewRestRotation(tr.Roster, rand.New(rand.NewSource(3)))
		for range 5 {
			if diff := cmp.Diff(playerNames(a.Next(3)), playerNames(b.Next(3))); diff != "" {
				t.Errorf("rotations differ (-a +b):\n%s", diff)
			}
		}
	})

	t.Run("nobody rests for zero", func(t *testing.T) {
		rr := NewRestRotation(tr.Roster, rand.New(rand.NewSource(4)))
		if got := rr.Next(0); got != nil {
			t.Errorf("Next(0) = %v, want nil", playerNames(got))
		}
		if rr.Pending() != 16 {
			t.Errorf("Pending() = %d, want 16", rr.Pending())
		}
	})

	t.Run("requests are capped at the roster", func(t *testing.T) {
		rr := NewRestRotation(tr.Roster, rand.New(rand.NewSource(5)))
		rr.Next(3)
		resting := rr.Next(40)
		if len(resting) != 16 {
			t.Fatalf("Next(40) = %d players, want 16", len(resting))
		}
		seen := make(map[*roster.Player]bool)
		for _, p := range resting {
			if seen[p] {
				t.Errorf("%s rests twice in one round", p.Name)
			}
			seen[p] = true
		}
	})
}
