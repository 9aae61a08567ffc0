package roster

import (
	"fmt"
	"sort"

	"github.com/derekprior/mixer/internal/config"
)

// Player is a scheduling unit. Index is the player's position in
// Roster.Players and is stable for the lifetime of the roster.
type Player struct {
	Name  string
	Rank  int
	Team  string
	Index int
}

func (p *Player) String() string {
	return fmt.Sprintf("%s[%s %d]", p.Name, p.Team, p.Rank)
}

// Pretty returns the player padded for column output.
func (p *Player) Pretty() string {
	return fmt.Sprintf("%-22s", p.String())
}

// Team is a group of players that never share a match, ordered by rank.
type Team struct {
	Name    string
	Players []*Player
}

// Roster is the fixed set of teams and players for a tournament.
type Roster struct {
	Teams   []*Team
	Players []*Player

	byName map[string]*Player
	byTeam map[string]*Team
}

// New builds a roster from team name -> player name -> rank. Teams are
// sorted by name and players by rank, then name, so the same input always
// yields the same indexes.
func New(teams map[string]map[string]int) (*Roster, error) {
	r := &Roster{
		byName: make(map[string]*Player),
		byTeam: make(map[string]*Team),
	}

	names := make([]string, 0, len(teams))
	for name := range teams {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		team := &Team{Name: name}
		for player, rank := range teams[name] {
			if prev, ok := r.byName[player]; ok {
				return nil, fmt.Errorf("player %q appears in both %q and %q", player, prev.Team, name)
			}
			p := &Player{Name: player, Rank: rank, Team: name}
			r.byName[player] = p
			team.Players = append(team.Players, p)
		}
		sort.Slice(team.Players, func(i, j int) bool {
			if team.Players[i].Rank != team.Players[j].Rank {
				return team.Players[i].Rank < team.Players[j].Rank
			}
			return team.Players[i].Name < team.Players[j].Name
		})
		r.Teams = append(r.Teams, team)
		r.byTeam[name] = team
	}

	for _, team := range r.Teams {
		for _, p := range team.Players {
			p.Index = len(r.Players)
			r.Players = append(r.Players, p)
		}
	}

	return r, nil
}

// FromConfig builds the roster described by cfg.
func FromConfig(cfg *config.Config) (*Roster, error) {
	return New(cfg.Teams)
}

// Player looks up a player by name.
func (r *Roster) Player(name string) (*Player, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Team looks up a team by name.
func (r *Roster) Team(name string) (*Team, bool) {
	t, ok := r.byTeam[name]
	return t, ok
}

// Size returns the number of players.
func (r *Roster) Size() int {
	return len(r.Players)
}

// Opponents returns every player not on p's team, in roster order.
func (r *Roster) Opponents(p *Player) []*Player {
	opponents := make([]*Player, 0, len(r.Players))
	for _, o := range r.Players {
		if o.Team != p.Team {
			opponents = append(opponents, o)
		}
	}
	return opponents
}
