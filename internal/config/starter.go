package config

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"gopkg.in/yaml.v3"
)

const starterHeader = `# Mixer Tournament Configuration
# =============================
# This file defines the roster and the rounds to generate. Every player
# should meet every player from the other teams as evenly as possible.

name: %q

# Strategy determines how each round is built.
# "random_search" tries many shuffled assignments per round and keeps the
# most balanced one. "greedy" builds one round directly and is much faster,
# but usually less balanced.
strategy: random_search

# A match holds at most one player from each team.
match_capacity: %d

# Defaults to roster size / match_capacity, rounded up, or the size of
# the largest team if that is more.
matches_per_round: %d

# Random search settings. More attempts give better balance; workers run
# attempts in parallel without changing the result.
attempts: 200
workers: 4
seed: %d

# Guidelines are reported as warnings when a schedule exceeds them.
guidelines:
  max_imbalance: 2

# Teams map each player name to a rank. Player names must be unique
# across all teams.
`

const roundsHeader = `
# Rounds are generated in order. "players" below the roster size rests the
# difference, rotating through every player before anyone rests twice.
#
# Rounds that were already played can be recorded under seed_rounds:
#
# seed_rounds:
#   - track: "Opening Night"
#     matches:
#       - [Alice, Bob, Carol, Dave]
`

// Starter renders a commented starter config with a random roster of
// teams x perTeam players. The same seed always produces the same file.
func Starter(teams, perTeam int, seed int64) ([]byte, error) {
	if teams < 2 {
		return nil, fmt.Errorf("at least two teams are required, got %d", teams)
	}
	if perTeam < 1 {
		return nil, fmt.Errorf("at least one player per team is required, got %d", perTeam)
	}

	faker := gofakeit.New(uint64(seed))

	capacity := min(teams, DefaultMatchCapacity)
	size := teams * perTeam
	matches := (size + capacity - 1) / capacity

	roster := make(map[string]map[string]int, teams)
	usedPlayers := make(map[string]bool)
	for len(roster) < teams {
		team := uniqueName(faker.Color, func(s string) bool { _, ok := roster[s]; return ok }, len(roster)+1)
		players := make(map[string]int, perTeam)
		for rank := 1; rank <= perTeam; rank++ {
			name := uniqueName(faker.FirstName, func(s string) bool { return usedPlayers[s] }, len(usedPlayers)+1)
			usedPlayers[name] = true
			players[name] = rank
		}
		roster[team] = players
	}

	rounds := make([]Round, 4)
	for i := range rounds {
		rounds[i] = Round{Track: faker.City(), Players: size}
		if i >= 2 {
			rounds[i].Players = size - teams
		}
	}

	teamsYAML, err := yaml.Marshal(struct {
		Teams map[string]map[string]int `yaml:"teams"`
	}{roster})
	if err != nil {
		return nil, fmt.Errorf("encoding teams: %w", err)
	}
	roundsYAML, err := yaml.Marshal(struct {
		Rounds []Round `yaml:"rounds"`
	}{rounds})
	if err != nil {
		return nil, fmt.Errorf("encoding rounds: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, starterHeader, faker.Company()+" Cup", capacity, matches, seed)
	b.Write(teamsYAML)
	b.WriteString(roundsHeader)
	b.Write(roundsYAML)
	return []byte(b.String()), nil
}

// uniqueName draws names until one is unused, falling back to a numbered
// variant so a small name pool can't loop forever.
func uniqueName(draw func() string, taken func(string) bool, n int) string {
	for range 20 {
		if s := draw(); s != "" && !taken(s) {
			return s
		}
	}
	for i := n; ; i++ {
		s := fmt.Sprintf("%s %d", draw(), i)
		if !taken(s) {
			return s
		}
	}
}
