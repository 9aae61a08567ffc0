// Package report renders a finished schedule for people: a plain-text dump
// of every round with a balance summary, and a PNG chart of per-player
// imbalance.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/derekprior/mixer/internal/balance"
	"github.com/derekprior/mixer/internal/schedule"
)

// Text writes every round of t followed by the balance summary.
func Text(w io.Writer, t *schedule.Tournament) error {
	summary := balance.Summarize(t.Ledger())
	if _, err := fmt.Fprintln(w, t.Pretty()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s", Summary(summary))
	return err
}

// Summary describes the spread of imbalance across the roster.
func Summary(s balance.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imbalance: min %d, max %d (score %.2f)\n", s.Min, s.Max, s.Score)
	fmt.Fprintf(&b, "  Most balanced (%d): %s\n", s.Min, names(s.Best()))
	fmt.Fprintf(&b, "  Least balanced (%d): %s\n", s.Max, names(s.Worst()))
	return b.String()
}

func names(rows []balance.Row) string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Player.String()
	}
	return strings.Join(out, ", ")
}

const (
	barWidth   = 24
	barSpacing = 12
	chartWidth = 800
)

var (
	barColor  = drawing.ColorFromHex("4472C4")
	overColor = drawing.ColorFromHex("C0504D")
)

// ImbalanceChart renders a PNG bar chart with one bar per player, in roster
// order. Bars above limit are drawn in red.
func ImbalanceChart(t *schedule.Tournament, limit int) ([]byte, error) {
	l := t.Ledger()
	players := t.Roster.Players
	if len(players) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}

	bars := make([]chart.Value, len(players))
	top := max(1, limit)
	for i, p := range players {
		v := balance.Imbalance(l, p)
		top = max(top, v)
		color := barColor
		if v > limit {
			color = overColor
		}
		bars[i] = chart.Value{
			Label: p.Name,
			Value: float64(v),
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
			},
		}
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("%s: opponent imbalance", t.Name),
		Width:      max(chartWidth, len(bars)*(barWidth+barSpacing)+120),
		Height:     480,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Bottom: 20},
		},
		XAxis: chart.Style{
			TextRotationDegrees: 90,
		},
		YAxis: chart.YAxis{
			Name: "Imbalance",
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(top + 1),
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}
