// Package ledger records committed matches and answers how often any two
// players have met.
package ledger

import (
	"slices"

	"github.com/derekprior/mixer/internal/roster"
)

// Ledger is an append-only record of committed matches. Candidate matches
// must never be recorded into a shared ledger; search attempts record into
// a Clone instead.
type Ledger struct {
	roster  *roster.Roster
	matches [][]*roster.Player
	counts  [][]int // counts[a][b] by player index
	played  []int
}

func New(r *roster.Roster) *Ledger {
	n := r.Size()
	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}
	return &Ledger{
		roster: r,
		counts: counts,
		played: make([]int, n),
	}
}

func (l *Ledger) Roster() *roster.Roster {
	return l.roster
}

// Record appends a committed match.
func (l *Ledger) Record(participants []*roster.Player) {
	match := slices.Clone(participants)
	l.matches = append(l.matches, match)
	for i, a := range match {
		l.played[a.Index]++
		for _, b := range match[i+1:] {
			l.counts[a.Index][b.Index]++
			l.counts[b.Index][a.Index]++
		}
	}
}

// Matches returns the committed matches in the order they were recorded.
// Callers must not modify the result.
func (l *Ledger) Matches() [][]*roster.Player {
	return l.matches
}

// Count returns how many committed matches a and b have shared.
func (l *Ledger) Count(a, b *roster.Player) int {
	return l.counts[a.Index][b.Index]
}

// Played returns the number of committed matches p took part in.
func (l *Ledger) Played(p *roster.Player) int {
	return l.played[p.Index]
}

// CoParticipants groups every committed match p played in by the other
// participants and counts them. Players p never met are absent.
func (l *Ledger) CoParticipants(p *roster.Player) map[string]int {
	counts := make(map[string]int)
	for _, match := range l.matches {
		if !slices.Contains(match, p) {
			continue
		}
		for _, o := range match {
			if o != p {
				counts[o.Name]++
			}
		}
	}
	return counts
}

// Meetings returns p's meeting count with every player outside p's team.
// Opponents never met are present with a count of 0.
func (l *Ledger) Meetings(p *roster.Player) map[string]int {
	meetings := make(map[string]int)
	row := l.counts[p.Index]
	for _, o := range l.roster.Players {
		if o.Team != p.Team {
			meetings[o.Name] = row[o.Index]
		}
	}
	return meetings
}

// Clone returns an independent copy. Matches recorded into the copy are
// invisible to the original and vice versa.
func (l *Ledger) Clone() *Ledger {
	counts := make([][]int, len(l.counts))
	for i, row := range l.counts {
		counts[i] = slices.Clone(row)
	}
	return &Ledger{
		roster:  l.roster,
		matches: slices.Clip(l.matches),
		counts:  counts,
		played:  slices.Clone(l.played),
	}
}
