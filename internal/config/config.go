package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

const (
	DefaultName          = "Tournament"
	DefaultStrategy      = "random_search"
	DefaultMatchCapacity = 4
	DefaultAttempts      = 100
	DefaultMaxImbalance  = 2
)

// Round describes one round to generate.
type Round struct {
	Track string `yaml:"track"`
	// Players is the number of participants wanted this round. Zero means
	// the whole roster; anything lower rests the difference.
	Players int `yaml:"players"`
}

// SeedRound is a round that has already been played and is committed
// before any generation happens.
type SeedRound struct {
	Track   string     `yaml:"track"`
	Matches [][]string `yaml:"matches"`
}

type Guidelines struct {
	MaxImbalance int `yaml:"max_imbalance"`
}

type Config struct {
	Name            string                    `yaml:"name"`
	Strategy        string                    `yaml:"strategy"`
	MatchCapacity   int                       `yaml:"match_capacity"`
	MatchesPerRound int                       `yaml:"matches_per_round"`
	Attempts        int                       `yaml:"attempts"`
	Workers         int                       `yaml:"workers"`
	Seed            int64                     `yaml:"seed"`
	Teams           map[string]map[string]int `yaml:"teams"`
	SeedRounds      []SeedRound               `yaml:"seed_rounds"`
	Rounds          []Round                   `yaml:"rounds"`
	Guidelines      Guidelines                `yaml:"guidelines"`
}

// TeamNames returns team names in sorted order.
func (c *Config) TeamNames() []string {
	names := make([]string, 0, len(c.Teams))
	for name := range c.Teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RosterSize returns the number of players across all teams.
func (c *Config) RosterSize() int {
	n := 0
	for _, players := range c.Teams {
		n += len(players)
	}
	return n
}

// LoadFromBytes parses YAML bytes into a Config, applies defaults and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Strategy == "" {
		c.Strategy = DefaultStrategy
	}
	if c.MatchCapacity == 0 {
		c.MatchCapacity = DefaultMatchCapacity
	}
	if c.MatchesPerRound == 0 && c.MatchCapacity > 0 {
		// Enough seats for everyone, and a separate match for each teammate.
		size := c.RosterSize()
		c.MatchesPerRound = (size + c.MatchCapacity - 1) / c.MatchCapacity
		for _, players := range c.Teams {
			c.MatchesPerRound = max(c.MatchesPerRound, len(players))
		}
	}
	if c.Attempts == 0 {
		c.Attempts = DefaultAttempts
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.Guidelines.MaxImbalance == 0 {
		c.Guidelines.MaxImbalance = DefaultMaxImbalance
	}
	for i := range c.Rounds {
		if c.Rounds[i].Players == 0 {
			c.Rounds[i].Players = c.RosterSize()
		}
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (c *Config) validate() error {
	if len(c.Teams) < 2 {
		return invalid("at least two teams are required")
	}
	if c.MatchCapacity < 2 {
		return invalid("match_capacity must be at least 2, got %d", c.MatchCapacity)
	}
	if c.MatchesPerRound < 1 {
		return invalid("matches_per_round must be at least 1, got %d", c.MatchesPerRound)
	}
	if c.Attempts < 1 {
		return invalid("attempts must be at least 1, got %d", c.Attempts)
	}
	if c.Workers < 1 {
		return invalid("workers must be at least 1, got %d", c.Workers)
	}

	// Player names are identities, so they must be unique across teams
	seen := make(map[string]string)
	for _, team := range c.TeamNames() {
		players := c.Teams[team]
		if len(players) == 0 {
			return invalid("team %q has no players", team)
		}
		if len(players) > c.MatchesPerRound {
			return invalid("team %q has %d players but a round only has %d matches; teammates would have to share a match",
				team, len(players), c.MatchesPerRound)
		}
		for player := range players {
			if prev, ok := seen[player]; ok {
				return invalid("player %q appears in both %q and %q", player, prev, team)
			}
			seen[player] = team
		}
	}

	if len(c.Rounds) == 0 {
		return invalid("at least one round is required")
	}
	size := c.RosterSize()
	seats := c.MatchesPerRound * c.MatchCapacity
	for i, r := range c.Rounds {
		if r.Players < 0 || r.Players > size {
			return invalid("round %d (%s): players must be between 1 and %d, got %d", i+1, r.Track, size, r.Players)
		}
		if r.Players > seats {
			return invalid("round %d (%s): %d players do not fit in %d matches of %d",
				i+1, r.Track, r.Players, c.MatchesPerRound, c.MatchCapacity)
		}
	}

	for i, sr := range c.SeedRounds {
		seated := make(map[string]int)
		for j, match := range sr.Matches {
			if len(match) > c.MatchCapacity {
				return invalid("seed round %d match %d has %d players, capacity is %d", i+1, j+1, len(match), c.MatchCapacity)
			}
			for _, name := range match {
				if _, ok := seen[name]; !ok {
					return invalid("seed round %d match %d: unknown player %q", i+1, j+1, name)
				}
				if prev, ok := seated[name]; ok {
					return invalid("seed round %d: %q is listed in match %d and match %d", i+1, name, prev, j+1)
				}
				seated[name] = j + 1
			}
		}
	}

	return nil
}
