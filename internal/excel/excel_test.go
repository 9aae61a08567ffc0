package excel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/derekprior/mixer/internal/balance"
	"github.com/derekprior/mixer/internal/config"
	"github.com/derekprior/mixer/internal/schedule"
)

func testData(t *testing.T) (*config.Config, *schedule.Result) {
	t.Helper()
	cfg := &config.Config{
		Name:            "Winter Champs",
		MatchCapacity:   3,
		MatchesPerRound: 2,
		Teams: map[string]map[string]int{
			"Red":   {"Alice": 1, "Bob": 2},
			"Blue":  {"Erin": 1, "Frank": 2},
			"Green": {"Ivan": 1, "Judy": 2},
		},
		Guidelines: config.Guidelines{MaxImbalance: 1},
	}
	tr, err := schedule.FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}

	add := func(track string, resting []string, matches ...[]string) {
		r := tr.NewRound(track)
		for _, name := range resting {
			p, _ := tr.Roster.Player(name)
			r.Resting = append(r.Resting, p)
		}
		for _, names := range matches {
			m := r.AddMatch(cfg.MatchCapacity)
			for _, name := range names {
				p, _ := tr.Roster.Player(name)
				if err := m.AddParticipant(p); err != nil {
					t.Fatalf("AddParticipant(%s) error: %v", name, err)
				}
			}
		}
		if err := tr.Commit(r); err != nil {
			t.Fatalf("Commit() error: %v", err)
		}
	}
	add("Monza", nil, []string{"Alice", "Erin", "Ivan"}, []string{"Bob", "Frank", "Judy"})
	add("Suzuka", []string{"Bob", "Judy"}, []string{"Alice", "Frank"}, []string{"Erin", "Ivan"})

	return cfg, &schedule.Result{
		Tournament: tr,
		Summary:    balance.Summarize(tr.Ledger()),
	}
}

func TestGenerateWorkbook(t *testing.T) {
	cfg, result := testData(t)

	f, err := Generate(cfg, result)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	t.Run("has sheets", func(t *testing.T) {
		for _, sheet := range []string{ScheduleSheet, MeetingsSheet, ImbalanceSheet, "Red", "Blue", "Green"} {
			idx, err := f.GetSheetIndex(sheet)
			if err != nil {
				t.Fatalf("GetSheetIndex error: %v", err)
			}
			if idx < 0 {
				t.Errorf("%s sheet not found", sheet)
			}
		}
	})

	t.Run("schedule sheet has headers", func(t *testing.T) {
		rows, _ := f.GetRows(ScheduleSheet)
		want := []string{"Round", "Track", "Match", "Player 1", "Player 2", "Player 3", "Resting"}
		if diff := cmp.Diff(want, rows[0]); diff != "" {
			t.Errorf("headers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("schedule sheet has match rows", func(t *testing.T) {
		rows, _ := f.GetRows(ScheduleSheet)
		if len(rows) != 5 {
			t.Fatalf("rows = %d, want header + 4 matches", len(rows))
		}
		want := []string{"2", "Suzuka", "R2M1", "Frank", "Alice", "", "Bob, Judy"}
		if diff := cmp.Diff(want, rows[3]); diff != "" {
			t.Errorf("row 4 mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("meetings matrix", func(t *testing.T) {
		// Roster order: Blue (Erin, Frank), Green (Ivan, Judy), Red (Alice, Bob)
		val, _ := f.GetCellValue(MeetingsSheet, "B1")
		if val != "Erin" {
			t.Errorf("B1 = %q, want Erin", val)
		}
		// Erin row, Ivan column: met in both rounds
		val, _ = f.GetCellValue(MeetingsSheet, "D2")
		if val != "2" {
			t.Errorf("Erin/Ivan = %q, want 2", val)
		}
		// Erin row, Frank column: teammates
		val, _ = f.GetCellValue(MeetingsSheet, "C2")
		if val != "-" {
			t.Errorf("Erin/Frank = %q, want -", val)
		}
	})

	t.Run("imbalance sheet worst first", func(t *testing.T) {
		val, _ := f.GetCellValue(ImbalanceSheet, "E2")
		if val != "2" {
			t.Errorf("E2 = %q, want 2", val)
		}
	})

	t.Run("team sheet lists every round", func(t *testing.T) {
		rows, _ := f.GetRows("Red")
		if len(rows) != 5 {
			t.Fatalf("Red rows = %d, want header + 2 players x 2 rounds", len(rows))
		}
		want := []string{"2", "Suzuka", "Bob", "resting"}
		if diff := cmp.Diff(want, rows[4]); diff != "" {
			t.Errorf("Bob round 2 mismatch (-want +got):\n%s", diff)
		}
		if rows[1][4] != "Erin, Ivan" {
			t.Errorf("Alice round 1 opponents = %q", rows[1][4])
		}
	})

	t.Run("default Sheet1 removed", func(t *testing.T) {
		idx, _ := f.GetSheetIndex("Sheet1")
		if idx >= 0 {
			t.Error("Sheet1 should be removed")
		}
	})
}

func TestReadSchedule(t *testing.T) {
	cfg, result := testData(t)
	f, err := Generate(cfg, result)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	path := t.TempDir() + "/test.xlsx"
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}

	f2, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	defer f2.Close()

	rows, err := ReadSchedule(f2)
	if err != nil {
		t.Fatalf("ReadSchedule() error: %v", err)
	}
	want := []MatchRow{
		{Row: 2, Round: 1, Track: "Monza", Match: "R1M1", Players: []string{"Erin", "Ivan", "Alice"}},
		{Row: 3, Round: 1, Track: "Monza", Match: "R1M2", Players: []string{"Frank", "Judy", "Bob"}},
		{Row: 4, Round: 2, Track: "Suzuka", Match: "R2M1", Players: []string{"Frank", "Alice"}, Resting: []string{"Bob", "Judy"}},
		{Row: 5, Round: 2, Track: "Suzuka", Match: "R2M2", Players: []string{"Erin", "Ivan"}},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("ReadSchedule() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateTeamSheets(t *testing.T) {
	cfg, result := testData(t)
	f, err := Generate(cfg, result)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	// Swap Frank out of round 2 by hand.
	f.SetCellValue(ScheduleSheet, "D4", "")
	path := t.TempDir() + "/edited.xlsx"
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}

	if err := UpdateTeamSheets(path, cfg); err != nil {
		t.Fatalf("UpdateTeamSheets() error: %v", err)
	}

	f2, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	defer f2.Close()

	rows, _ := f2.GetRows("Blue")
	// Blue: Erin, Frank for each round; Frank round 2 is row 5.
	if got := rows[4][3]; got != "not seated" {
		t.Errorf("Frank round 2 = %q, want not seated", got)
	}
	if idx, _ := f2.GetSheetIndex(ScheduleSheet); idx < 0 {
		t.Error("Schedule sheet lost")
	}
}

func TestColLetter(t *testing.T) {
	tests := map[int]string{1: "A", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}
	for col, want := range tests {
		if got := colLetter(col); got != want {
			t.Errorf("colLetter(%d) = %q, want %q", col, got, want)
		}
	}
}
