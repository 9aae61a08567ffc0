package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/derekprior/mixer/internal/balance"
	"github.com/derekprior/mixer/internal/config"
	"github.com/derekprior/mixer/internal/roster"
	"github.com/derekprior/mixer/internal/schedule"
	"github.com/xuri/excelize/v2"
)

const (
	ScheduleSheet  = "Schedule"
	MeetingsSheet  = "Meetings"
	ImbalanceSheet = "Imbalance"

	// Schedule sheet columns before the player columns.
	fixedCols = 3
)

// MatchRow is one match as laid out on the Schedule sheet.
type MatchRow struct {
	Row     int // 1-based sheet row
	Round   int
	Track   string
	Match   string
	Players []string
	Resting []string // only set on the first row of a round
}

// Generate creates an Excel workbook with the schedule, the meeting matrix,
// per-player imbalance and one sheet per team.
func Generate(cfg *config.Config, result *schedule.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	rows := scheduleRows(result.Tournament)
	if err := writeScheduleSheet(f, cfg, rows); err != nil {
		return nil, fmt.Errorf("writing schedule sheet: %w", err)
	}

	if err := writeMeetingsSheet(f, result.Tournament); err != nil {
		return nil, fmt.Errorf("writing meetings sheet: %w", err)
	}

	if err := writeImbalanceSheet(f, cfg, result.Summary); err != nil {
		return nil, fmt.Errorf("writing imbalance sheet: %w", err)
	}

	if err := writeTeamSheets(f, result.Tournament.Roster, rows); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

// UpdateTeamSheets rebuilds the per-team sheets of a saved workbook from its
// Schedule sheet, so hand edits to the schedule carry through.
func UpdateTeamSheets(path string, cfg *config.Config) error {
	r, err := roster.FromConfig(cfg)
	if err != nil {
		return err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rows, err := ReadSchedule(f)
	if err != nil {
		return err
	}
	for _, team := range r.Teams {
		if idx, _ := f.GetSheetIndex(team.Name); idx >= 0 {
			if err := f.DeleteSheet(team.Name); err != nil {
				return fmt.Errorf("removing %s sheet: %w", team.Name, err)
			}
		}
	}
	if err := writeTeamSheets(f, r, rows); err != nil {
		return fmt.Errorf("writing team sheets: %w", err)
	}
	return f.Save()
}

// ReadSchedule parses the Schedule sheet. Rows without a round number are
// skipped.
func ReadSchedule(f *excelize.File) ([]MatchRow, error) {
	rows, err := f.GetRows(ScheduleSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ScheduleSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", ScheduleSheet)
	}

	header := rows[0]
	restingCol := -1
	for i, h := range header {
		if h == "Resting" {
			restingCol = i
		}
	}
	if restingCol < fixedCols {
		return nil, fmt.Errorf("%s has no Resting column", ScheduleSheet)
	}

	var out []MatchRow
	for i, row := range rows[1:] {
		if len(row) < fixedCols || row[0] == "" {
			continue
		}
		round, err := strconv.Atoi(row[0])
		if err != nil {
			continue
		}
		mr := MatchRow{Row: i + 2, Round: round, Track: row[1], Match: row[2]}
		for col := fixedCols; col < restingCol && col < len(row); col++ {
			if name := strings.TrimSpace(row[col]); name != "" {
				mr.Players = append(mr.Players, name)
			}
		}
		if restingCol < len(row) {
			mr.Resting = splitNames(row[restingCol])
		}
		out = append(out, mr)
	}
	return out, nil
}

func splitNames(cell string) []string {
	var names []string
	for _, n := range strings.Split(cell, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func scheduleRows(t *schedule.Tournament) []MatchRow {
	var rows []MatchRow
	for _, r := range t.Rounds {
		for i, m := range r.Matches {
			mr := MatchRow{
				Row:   len(rows) + 2,
				Round: r.Number,
				Track: r.Track,
				Match: fmt.Sprintf("R%dM%d", r.Number, i+1),
			}
			for _, p := range m.Participants {
				mr.Players = append(mr.Players, p.Name)
			}
			if i == 0 {
				for _, p := range r.Resting {
					mr.Resting = append(mr.Resting, p.Name)
				}
			}
			rows = append(rows, mr)
		}
	}
	return rows
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 16, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return style
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	if style := headerStyle(f); style != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), style)
	}
}

func writeScheduleSheet(f *excelize.File, cfg *config.Config, rows []MatchRow) error {
	sheet := ScheduleSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	// Headers: Round, Track, Match, Player 1..N, Resting
	seats := cfg.MatchCapacity
	for _, mr := range rows {
		seats = max(seats, len(mr.Players))
	}
	headers := []string{"Round", "Track", "Match"}
	for i := range seats {
		headers = append(headers, fmt.Sprintf("Player %d", i+1))
	}
	headers = append(headers, "Resting")
	writeHeaders(f, sheet, headers)

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	playerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for _, mr := range rows {
		f.SetCellValue(sheet, cellRef(1, mr.Row), mr.Round)
		f.SetCellValue(sheet, cellRef(2, mr.Row), mr.Track)
		f.SetCellValue(sheet, cellRef(3, mr.Row), mr.Match)
		for i, name := range mr.Players {
			f.SetCellValue(sheet, cellRef(fixedCols+1+i, mr.Row), name)
		}
		if len(mr.Resting) > 0 {
			f.SetCellValue(sheet, cellRef(len(headers), mr.Row), strings.Join(mr.Resting, ", "))
		}

		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, mr.Row), cellRef(fixedCols, mr.Row), cellStyle)
			f.SetCellStyle(sheet, cellRef(len(headers), mr.Row), cellRef(len(headers), mr.Row), cellStyle)
		}
		if playerStyle != 0 {
			f.SetCellStyle(sheet, cellRef(fixedCols+1, mr.Row), cellRef(fixedCols+seats, mr.Row), playerStyle)
		}
	}

	// Set column widths (sized for Arial 16)
	f.SetColWidth(sheet, "A", "A", 10)
	f.SetColWidth(sheet, "B", "B", 20)
	f.SetColWidth(sheet, "C", "C", 10)
	f.SetColWidth(sheet, colLetter(fixedCols+1), colLetter(fixedCols+seats), 18)
	f.SetColWidth(sheet, colLetter(len(headers)), colLetter(len(headers)), 60)

	// Empty seats in filled rows get light red
	if len(rows) > 0 {
		lastRow := rows[len(rows)-1].Row
		redFill, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
			Font: &excelize.Font{Size: 16, Family: "Arial"},
		})
		first, last := colLetter(fixedCols+1), colLetter(fixedCols+seats)
		cellRange := fmt.Sprintf("%s2:%s%d", first, last, lastRow)
		formula := fmt.Sprintf(`AND($A2<>"",%s2="")`, first)
		f.SetConditionalFormat(sheet, cellRange, []excelize.ConditionalFormatOptions{
			{
				Type:     "formula",
				Criteria: formula,
				Format:   &redFill,
			},
		})
	}

	return nil
}

func writeMeetingsSheet(f *excelize.File, t *schedule.Tournament) error {
	sheet := MeetingsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	players := t.Roster.Players
	headers := []string{"Player"}
	for _, p := range players {
		headers = append(headers, p.Name)
	}
	writeHeaders(f, sheet, headers)

	centered, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	teammate, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Family: "Arial", Color: "#A6A6A6"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#EDEDED"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	l := t.Ledger()
	for i, p := range players {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), p.Name)
		for j, o := range players {
			col := j + 2
			if o.Team == p.Team {
				f.SetCellValue(sheet, cellRef(col, row), "-")
				if teammate != 0 {
					f.SetCellStyle(sheet, cellRef(col, row), cellRef(col, row), teammate)
				}
				continue
			}
			f.SetCellValue(sheet, cellRef(col, row), l.Count(p, o))
			if centered != 0 {
				f.SetCellStyle(sheet, cellRef(col, row), cellRef(col, row), centered)
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 18)
	if len(players) > 0 {
		f.SetColWidth(sheet, "B", colLetter(len(players)+1), 12)
	}
	return nil
}

func writeImbalanceSheet(f *excelize.File, cfg *config.Config, summary balance.Summary) error {
	sheet := ImbalanceSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Player", "Team", "Rank", "Played", "Imbalance", "Dispersion"}
	writeHeaders(f, sheet, headers)

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})

	for i, r := range summary.Rows {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), r.Player.Name)
		f.SetCellValue(sheet, cellRef(2, row), r.Player.Team)
		f.SetCellValue(sheet, cellRef(3, row), r.Player.Rank)
		f.SetCellValue(sheet, cellRef(4, row), r.Played)
		f.SetCellValue(sheet, cellRef(5, row), r.Imbalance)
		f.SetCellValue(sheet, cellRef(6, row), fmt.Sprintf("%.2f", r.Dispersion))
		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), cellStyle)
		}
	}

	widths := map[string]float64{"A": 18, "B": 16, "C": 8, "D": 10, "E": 14, "F": 14}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}

	// Imbalance above the guideline gets light red
	if len(summary.Rows) > 0 {
		redFill, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
			Font: &excelize.Font{Size: 16, Family: "Arial"},
		})
		f.SetConditionalFormat(sheet, fmt.Sprintf("E2:E%d", len(summary.Rows)+1), []excelize.ConditionalFormatOptions{
			{
				Type:     "cell",
				Criteria: ">",
				Value:    strconv.Itoa(cfg.Guidelines.MaxImbalance),
				Format:   &redFill,
			},
		})
	}
	return nil
}

func writeTeamSheets(f *excelize.File, r *roster.Roster, rows []MatchRow) error {
	type seat struct {
		match     string
		opponents []string
	}
	type roundInfo struct {
		number  int
		track   string
		seats   map[string]seat
		resting map[string]bool
	}

	// Collect each round in sheet order
	var rounds []*roundInfo
	byNumber := make(map[int]*roundInfo)
	for _, mr := range rows {
		ri, ok := byNumber[mr.Round]
		if !ok {
			ri = &roundInfo{number: mr.Round, track: mr.Track, seats: make(map[string]seat), resting: make(map[string]bool)}
			byNumber[mr.Round] = ri
			rounds = append(rounds, ri)
		}
		for _, name := range mr.Players {
			var opponents []string
			for _, o := range mr.Players {
				if o != name {
					opponents = append(opponents, o)
				}
			}
			ri.seats[name] = seat{match: mr.Match, opponents: opponents}
		}
		for _, name := range mr.Resting {
			ri.resting[name] = true
		}
	}

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	restStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Family: "Arial", Italic: true, Color: "#7F7F7F"},
	})

	for _, team := range r.Teams {
		sheet := team.Name
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		headers := []string{"Round", "Track", "Player", "Match", "Opponents"}
		writeHeaders(f, sheet, headers)

		row := 2
		for _, ri := range rounds {
			for _, p := range team.Players {
				f.SetCellValue(sheet, cellRef(1, row), ri.number)
				f.SetCellValue(sheet, cellRef(2, row), ri.track)
				f.SetCellValue(sheet, cellRef(3, row), p.Name)
				style := cellStyle
				if s, ok := ri.seats[p.Name]; ok {
					f.SetCellValue(sheet, cellRef(4, row), s.match)
					f.SetCellValue(sheet, cellRef(5, row), strings.Join(s.opponents, ", "))
				} else if ri.resting[p.Name] {
					f.SetCellValue(sheet, cellRef(4, row), "resting")
					style = restStyle
				} else {
					f.SetCellValue(sheet, cellRef(4, row), "not seated")
					style = restStyle
				}
				if style != 0 {
					f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), style)
				}
				row++
			}
		}

		// Set column widths (sized for Arial 16)
		widths := map[string]float64{"A": 10, "B": 20, "C": 18, "D": 14, "E": 60}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}

	return nil
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
