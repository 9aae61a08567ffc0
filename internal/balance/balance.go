// Package balance scores how evenly players have met their opponents.
//
// A player's imbalance is the spread between the opponent they have met the
// most and the one they have met the least. The population score that round
// generation minimizes is the worst imbalance plus a small penalty for how
// many players sit at high imbalances.
package balance

import (
	"sort"

	"github.com/derekprior/mixer/internal/ledger"
	"github.com/derekprior/mixer/internal/roster"
)

// dispersionWeight scales the population dispersion so it only breaks ties
// between equal worst-case imbalances.
const dispersionWeight = 100

func bounds(meetings map[string]int) (lo, hi int, ok bool) {
	for _, c := range meetings {
		if !ok {
			lo, hi, ok = c, c, true
			continue
		}
		lo = min(lo, c)
		hi = max(hi, c)
	}
	return lo, hi, ok
}

func imbalance(meetings map[string]int) int {
	lo, hi, ok := bounds(meetings)
	if !ok {
		return 0
	}
	return hi - lo
}

func dispersion(meetings map[string]int) float64 {
	if len(meetings) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range meetings {
		sum += float64(c * c)
	}
	return sum / float64(len(meetings))
}

// project returns p's meetings as if p had met each opponent once more.
// Names outside p's ledger entry (p itself, teammates) are ignored.
func project(l *ledger.Ledger, p *roster.Player, opponents []*roster.Player) map[string]int {
	meetings := l.Meetings(p)
	for _, o := range opponents {
		if _, ok := meetings[o.Name]; ok {
			meetings[o.Name]++
		}
	}
	return meetings
}

// Imbalance returns max - min over p's meeting counts, or 0 when p has no
// opponents.
func Imbalance(l *ledger.Ledger, p *roster.Player) int {
	return imbalance(l.Meetings(p))
}

// Dispersion returns the mean of p's squared meeting counts. It is measured
// about zero rather than the mean, so many repeat meetings cost more than
// an even spread of the same shape.
func Dispersion(l *ledger.Ledger, p *roster.Player) float64 {
	return dispersion(l.Meetings(p))
}

func ProjectedImbalance(l *ledger.Ledger, p *roster.Player, opponents []*roster.Player) int {
	return imbalance(project(l, p, opponents))
}

func ProjectedDispersion(l *ledger.Ledger, p *roster.Player, opponents []*roster.Player) float64 {
	return dispersion(project(l, p, opponents))
}

// Floor returns the fewest times p has met any opponent.
func Floor(l *ledger.Ledger, p *roster.Player) int {
	lo, _, _ := bounds(l.Meetings(p))
	return lo
}

// RaisesFloor returns how many opponents sit at p's minimum meeting count.
func RaisesFloor(l *ledger.Ledger, p *roster.Player) int {
	meetings := l.Meetings(p)
	lo, _, _ := bounds(meetings)
	n := 0
	for _, c := range meetings {
		if c == lo {
			n++
		}
	}
	return n
}

// RaisesCeiling returns how many opponents sit at p's maximum meeting count.
func RaisesCeiling(l *ledger.Ledger, p *roster.Player) int {
	meetings := l.Meetings(p)
	_, hi, _ := bounds(meetings)
	n := 0
	for _, c := range meetings {
		if c == hi {
			n++
		}
	}
	return n
}

// PopulationDispersion returns the mean of squared values, or 0 for none.
func PopulationDispersion(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += float64(v * v)
	}
	return sum / float64(len(values))
}

// GlobalScore is the worst imbalance across the roster plus the population
// dispersion of all imbalances scaled down by dispersionWeight. Lower is
// better.
func GlobalScore(l *ledger.Ledger) float64 {
	players := l.Roster().Players
	values := make([]int, len(players))
	worst := 0
	for i, p := range players {
		values[i] = Imbalance(l, p)
		worst = max(worst, values[i])
	}
	return float64(worst) + PopulationDispersion(values)/dispersionWeight
}

// Row is one player's line in a Summary.
type Row struct {
	Player     *roster.Player
	Imbalance  int
	Dispersion float64
	Played     int
}

// Summary describes the balance of the whole roster.
type Summary struct {
	Rows  []Row // worst imbalance first
	Min   int
	Max   int
	Score float64
}

// Worst returns the rows at the maximum imbalance.
func (s Summary) Worst() []Row {
	var rows []Row
	for _, r := range s.Rows {
		if r.Imbalance == s.Max {
			rows = append(rows, r)
		}
	}
	return rows
}

// Best returns the rows at the minimum imbalance.
func (s Summary) Best() []Row {
	var rows []Row
	for _, r := range s.Rows {
		if r.Imbalance == s.Min {
			rows = append(rows, r)
		}
	}
	return rows
}

// Summarize computes per-player balance for the whole roster.
func Summarize(l *ledger.Ledger) Summary {
	players := l.Roster().Players
	s := Summary{Rows: make([]Row, len(players))}
	values := make([]int, len(players))
	for i, p := range players {
		s.Rows[i] = Row{
			Player:     p,
			Imbalance:  Imbalance(l, p),
			Dispersion: Dispersion(l, p),
			Played:     l.Played(p),
		}
		values[i] = s.Rows[i].Imbalance
		if i == 0 || values[i] < s.Min {
			s.Min = values[i]
		}
		s.Max = max(s.Max, values[i])
	}
	sort.SliceStable(s.Rows, func(i, j int) bool {
		return s.Rows[i].Imbalance > s.Rows[j].Imbalance
	})
	s.Score = float64(s.Max) + PopulationDispersion(values)/dispersionWeight
	return s
}
