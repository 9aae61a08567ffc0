package schedule

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/derekprior/mixer/internal/config"
	"github.com/derekprior/mixer/internal/ledger"
	"github.com/derekprior/mixer/internal/roster"
)

var (
	// ErrConstraintViolation means a match would hold two players from the same team.
	ErrConstraintViolation = errors.New("constraint violation")
	ErrMatchFull           = errors.New("match is full")
	// ErrNoEligibleMatch means no candidate match can take a player.
	ErrNoEligibleMatch = errors.New("no eligible match")
	// ErrUnseatable means a round can never seat its active players,
	// no matter how they are shuffled.
	ErrUnseatable = errors.New("round cannot be seated")
)

// Match is a group of players from distinct teams. Participants are kept
// ordered by team name.
type Match struct {
	ID           uuid.UUID
	Capacity     int
	Participants []*roster.Player
}

func NewMatch(capacity int) *Match {
	return &Match{ID: uuid.New(), Capacity: capacity}
}

// HasTeam reports whether a player from team is already in the match.
func (m *Match) HasTeam(team string) bool {
	for _, p := range m.Participants {
		if p.Team == team {
			return true
		}
	}
	return false
}

func (m *Match) Full() bool {
	return m.Capacity > 0 && len(m.Participants) >= m.Capacity
}

// AddParticipant adds p, keeping participants ordered by team name.
func (m *Match) AddParticipant(p *roster.Player) error {
	if m.HasTeam(p.Team) {
		return fmt.Errorf("%w: %s already has a player from %s", ErrConstraintViolation, m, p.Team)
	}
	if m.Full() {
		return fmt.Errorf("%w: %s cannot take %s", ErrMatchFull, m, p.Name)
	}
	i, _ := slices.BinarySearchFunc(m.Participants, p.Team, func(q *roster.Player, team string) int {
		return strings.Compare(q.Team, team)
	})
	m.Participants = slices.Insert(m.Participants, i, p)
	return nil
}

func (m *Match) String() string {
	short := make([]string, len(m.Participants))
	for i, p := range m.Participants {
		short[i] = p.Name
		if len(short[i]) > 4 {
			short[i] = short[i][:4]
		}
	}
	return fmt.Sprintf("M%s(%s)", m.ID.String()[:8], strings.Join(short, ","))
}

// Pretty returns the participants as one padded line.
func (m *Match) Pretty() string {
	cols := make([]string, len(m.Participants))
	for i, p := range m.Participants {
		cols[i] = p.Pretty()
	}
	return strings.Join(cols, ", ")
}

// Round is a set of simultaneous matches.
type Round struct {
	ID      uuid.UUID
	Number  int
	Track   string
	Matches []*Match
	Resting []*roster.Player
}

// AddMatch appends an empty match.
func (r *Round) AddMatch(capacity int) *Match {
	m := NewMatch(capacity)
	r.Matches = append(r.Matches, m)
	return m
}

// Participants returns every player seated in the round, match by match.
func (r *Round) Participants() []*roster.Player {
	var players []*roster.Player
	for _, m := range r.Matches {
		players = append(players, m.Participants...)
	}
	return players
}

func (r *Round) Pretty() string {
	lines := []string{fmt.Sprintf("--- Round %d: %s ---", r.Number, r.Track)}
	for _, m := range r.Matches {
		lines = append(lines, "  "+m.Pretty())
	}
	if len(r.Resting) > 0 {
		names := make([]string, len(r.Resting))
		for i, p := range r.Resting {
			names[i] = p.Name
		}
		lines = append(lines, "  resting: "+strings.Join(names, ", "))
	}
	return strings.Join(lines, "\n")
}

// Tournament owns the committed rounds and the ledger built from them.
type Tournament struct {
	ID              uuid.UUID
	Name            string
	Roster          *roster.Roster
	Capacity        int
	MatchesPerRound int
	Rounds          []*Round

	ledger *ledger.Ledger
}

func NewTournament(name string, r *roster.Roster, capacity, matchesPerRound int) *Tournament {
	return &Tournament{
		ID:              uuid.New(),
		Name:            name,
		Roster:          r,
		Capacity:        capacity,
		MatchesPerRound: matchesPerRound,
		ledger:          ledger.New(r),
	}
}

// FromConfig builds an empty tournament for cfg and commits its seed rounds.
func FromConfig(cfg *config.Config) (*Tournament, error) {
	r, err := roster.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	t := NewTournament(cfg.Name, r, cfg.MatchCapacity, cfg.MatchesPerRound)
	if err := t.Seed(cfg.SeedRounds); err != nil {
		return nil, err
	}
	return t, nil
}

// Ledger returns the committed meeting history. It never includes
// uncommitted rounds.
func (t *Tournament) Ledger() *ledger.Ledger {
	return t.ledger
}

// NewRound returns an uncommitted round numbered after the last committed one.
func (t *Tournament) NewRound(track string) *Round {
	return &Round{
		ID:     uuid.New(),
		Number: len(t.Rounds) + 1,
		Track:  track,
	}
}

// Commit validates r and appends it to the tournament history.
func (t *Tournament) Commit(r *Round) error {
	if r.Number != len(t.Rounds)+1 {
		return fmt.Errorf("round %d committed out of order, expected round %d", r.Number, len(t.Rounds)+1)
	}

	resting := make(map[*roster.Player]bool, len(r.Resting))
	for _, p := range r.Resting {
		resting[p] = true
	}
	seated := make(map[*roster.Player]bool)
	for _, m := range r.Matches {
		if m.Capacity > 0 && len(m.Participants) > m.Capacity {
			return fmt.Errorf("round %d: %w: %s holds %d players, capacity %d", r.Number, ErrMatchFull, m, len(m.Participants), m.Capacity)
		}
		teams := make(map[string]bool)
		for _, p := range m.Participants {
			if teams[p.Team] {
				return fmt.Errorf("round %d: %w: %s has two players from %s", r.Number, ErrConstraintViolation, m, p.Team)
			}
			teams[p.Team] = true
			if seated[p] {
				return fmt.Errorf("round %d: %s is seated in two matches", r.Number, p)
			}
			seated[p] = true
			if resting[p] {
				return fmt.Errorf("round %d: %s is resting but seated in %s", r.Number, p, m)
			}
		}
	}

	for _, m := range r.Matches {
		t.ledger.Record(m.Participants)
	}
	t.Rounds = append(t.Rounds, r)
	return nil
}

// Seed commits rounds that were played before generation started.
func (t *Tournament) Seed(rounds []config.SeedRound) error {
	for _, sr := range rounds {
		r := t.NewRound(sr.Track)
		listed := make(map[*roster.Player]bool)
		for _, names := range sr.Matches {
			m := r.AddMatch(t.Capacity)
			for _, name := range names {
				p, ok := t.Roster.Player(name)
				if !ok {
					return fmt.Errorf("seed round %q: %w: unknown player %q", sr.Track, config.ErrInvalid, name)
				}
				if listed[p] {
					return fmt.Errorf("seed round %q: %w: %s is listed twice", sr.Track, config.ErrInvalid, p)
				}
				listed[p] = true
				if err := m.AddParticipant(p); err != nil {
					return fmt.Errorf("seed round %q: %w", sr.Track, err)
				}
			}
		}
		if err := t.Commit(r); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tournament) Pretty() string {
	bar := strings.Repeat("=", len(t.Name)+4)
	lines := []string{bar, fmt.Sprintf("# %s #", t.Name), bar}
	for _, r := range t.Rounds {
		lines = append(lines, r.Pretty())
	}
	return strings.Join(lines, "\n")
}
