package validator

import (
	"fmt"
	"slices"
	"sort"

	"github.com/derekprior/mixer/internal/balance"
	"github.com/derekprior/mixer/internal/config"
	"github.com/derekprior/mixer/internal/excel"
	"github.com/derekprior/mixer/internal/ledger"
	"github.com/derekprior/mixer/internal/roster"
	"github.com/xuri/excelize/v2"
)

// Violation represents a constraint violation found during validation.
type Violation struct {
	Row       int
	Type      string // "error" or "warning"
	Message   string
	Imbalance int // for imbalance warnings (0 = not applicable)
}

// Validate reads a schedule Excel file and checks it against the config rules.
func Validate(cfg *config.Config, path string) ([]Violation, error) {
	r, err := roster.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rows, err := excel.ReadSchedule(f)
	if err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}

	return Check(cfg, r, rows), nil
}

// Check runs every rule and guideline over parsed schedule rows.
func Check(cfg *config.Config, r *roster.Roster, rows []excel.MatchRow) []Violation {
	var violations []Violation

	// Check hard constraints
	violations = append(violations, checkUnknownPlayers(r, rows)...)
	violations = append(violations, checkCapacity(cfg, rows)...)
	violations = append(violations, checkTeammates(r, rows)...)
	violations = append(violations, checkDoubleSeating(rows)...)
	violations = append(violations, checkRestingSeated(rows)...)
	violations = append(violations, checkMatchesPerRound(cfg, rows)...)
	violations = append(violations, checkParticipation(r, rows)...)

	// Check soft constraints
	violations = append(violations, checkImbalance(cfg, r, rows)...)

	return violations
}

func checkUnknownPlayers(r *roster.Roster, rows []excel.MatchRow) []Violation {
	var violations []Violation
	for _, mr := range rows {
		for _, name := range slices.Concat(mr.Players, mr.Resting) {
			if _, ok := r.Player(name); !ok {
				violations = append(violations, Violation{
					Row:     mr.Row,
					Type:    "error",
					Message: fmt.Sprintf("round %d %s: unknown player %q", mr.Round, mr.Match, name),
				})
			}
		}
	}
	return violations
}

func checkCapacity(cfg *config.Config, rows []excel.MatchRow) []Violation {
	var violations []Violation
	for _, mr := range rows {
		if len(mr.Players) > cfg.MatchCapacity {
			violations = append(violations, Violation{
				Row:  mr.Row,
				Type: "error",
				Message: fmt.Sprintf("round %d %s holds %d players (max %d)",
					mr.Round, mr.Match, len(mr.Players), cfg.MatchCapacity),
			})
		}
	}
	return violations
}

func checkTeammates(r *roster.Roster, rows []excel.MatchRow) []Violation {
	var violations []Violation
	for _, mr := range rows {
		teams := make(map[string]string)
		for _, name := range mr.Players {
			p, ok := r.Player(name)
			if !ok {
				continue
			}
			if other, ok := teams[p.Team]; ok {
				violations = append(violations, Violation{
					Row:  mr.Row,
					Type: "error",
					Message: fmt.Sprintf("round %d %s: %s and %s are both on %s",
						mr.Round, mr.Match, other, name, p.Team),
				})
				continue
			}
			teams[p.Team] = name
		}
	}
	return violations
}

func checkDoubleSeating(rows []excel.MatchRow) []Violation {
	type roundPlayer struct {
		round int
		name  string
	}
	seen := make(map[roundPlayer]string)

	var violations []Violation
	for _, mr := range rows {
		for _, name := range mr.Players {
			k := roundPlayer{mr.Round, name}
			if first, ok := seen[k]; ok {
				violations = append(violations, Violation{
					Row:  mr.Row,
					Type: "error",
					Message: fmt.Sprintf("round %d: %s plays in both %s and %s",
						mr.Round, name, first, mr.Match),
				})
				continue
			}
			seen[k] = mr.Match
		}
	}
	return violations
}

func checkRestingSeated(rows []excel.MatchRow) []Violation {
	resting := make(map[int]map[string]bool)
	for _, mr := range rows {
		if resting[mr.Round] == nil {
			resting[mr.Round] = make(map[string]bool)
		}
		for _, name := range mr.Resting {
			resting[mr.Round][name] = true
		}
	}

	var violations []Violation
	for _, mr := range rows {
		for _, name := range mr.Players {
			if resting[mr.Round][name] {
				violations = append(violations, Violation{
					Row:     mr.Row,
					Type:    "error",
					Message: fmt.Sprintf("round %d: %s is resting but plays in %s", mr.Round, name, mr.Match),
				})
			}
		}
	}
	return violations
}

func checkMatchesPerRound(cfg *config.Config, rows []excel.MatchRow) []Violation {
	counts := make(map[int]int)
	var order []int
	for _, mr := range rows {
		if counts[mr.Round] == 0 {
			order = append(order, mr.Round)
		}
		counts[mr.Round]++
	}

	var violations []Violation
	for _, round := range order {
		if counts[round] > cfg.MatchesPerRound {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("round %d has %d matches (max %d)", round, counts[round], cfg.MatchesPerRound),
			})
		}
	}
	return violations
}

func checkParticipation(r *roster.Roster, rows []excel.MatchRow) []Violation {
	if len(rows) == 0 {
		return nil
	}
	played := make(map[string]bool)
	for _, mr := range rows {
		for _, name := range mr.Players {
			played[name] = true
		}
	}

	var violations []Violation
	for _, p := range r.Players {
		if !played[p.Name] {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%s has no matches scheduled", p),
			})
		}
	}
	return violations
}

// checkImbalance rebuilds the meeting history from the sheet and warns about
// players whose imbalance is over the guideline, worst first.
func checkImbalance(cfg *config.Config, r *roster.Roster, rows []excel.MatchRow) []Violation {
	l := ledger.New(r)
	for _, mr := range rows {
		var players []*roster.Player
		for _, name := range mr.Players {
			if p, ok := r.Player(name); ok && !slices.Contains(players, p) {
				players = append(players, p)
			}
		}
		l.Record(players)
	}

	var violations []Violation
	for _, p := range r.Players {
		imb := balance.Imbalance(l, p)
		if imb <= cfg.Guidelines.MaxImbalance {
			continue
		}
		violations = append(violations, Violation{
			Type:      "warning",
			Imbalance: imb,
			Message: fmt.Sprintf("%s imbalance %d exceeds %d",
				p, imb, cfg.Guidelines.MaxImbalance),
		})
	}
	// Sort by severity: highest imbalance first
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Imbalance > violations[j].Imbalance
	})
	return violations
}
