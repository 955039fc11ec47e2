// Package render presents analysis results on the terminal and in an Excel
// workbook.
package render

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"FlightDelayAnalysis/src/analysis"
	"FlightDelayAnalysis/src/processor"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

// Console writes results as styled tables.
type Console struct {
	w       io.Writer
	preview bool
	width   int
}

func NewConsole(w io.Writer, preview bool) *Console {
	return &Console{w: w, preview: preview, width: 72}
}

// Results prints every result grouped under its section heading.
func (c *Console) Results(results []analysis.Result) error {
	section := ""
	for _, res := range results {
		if res.Section != section {
			section = res.Section
			if _, err := fmt.Fprintln(c.w, sectionHeaderStyle.Render(strings.ToUpper(section))); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(c.w, c.Result(res)); err != nil {
			return err
		}
	}
	return nil
}

// Result renders a single result: title, notes, table and optional preview.
func (c *Console) Result(res analysis.Result) string {
	parts := []string{titleStyle.Render(res.Title)}
	for _, n := range res.Notes {
		parts = append(parts, mutedStyle.Render(n))
	}

	if res.Kind == analysis.KindScatter {
		parts = append(parts, fmt.Sprintf("%s points (%s vs %s)", humanize.Comma(int64(len(res.Points))), res.YLabel, res.XLabel))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	if len(res.Labels) == 0 {
		parts = append(parts, warningStyle.Render("no data"))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	parts = append(parts, valueTable(res))
	if c.preview && (res.Kind == analysis.KindBar || res.Kind == analysis.KindHistogram) {
		parts = append(parts, Preview(res, c.width, 12))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func valueTable(res analysis.Result) string {
	rows := make([][]string, len(res.Labels))
	integral := allIntegral(res.Values)
	for i, l := range res.Labels {
		rows[i] = []string{l, FormatValue(res.Values[i], integral)}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(res.XLabel, res.YLabel).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCellStyle
			case col == 1:
				return numberCellStyle
			default:
				return cellStyle
			}
		}).
		String()
}

// FormatValue prints counts with thousands separators and other values
// with two decimals.
func FormatValue(v float64, integral bool) string {
	if integral {
		return humanize.Comma(int64(v))
	}
	return humanize.FormatFloat("#,###.##", v)
}

func allIntegral(vals []float64) bool {
	for _, v := range vals {
		if v != math.Trunc(v) || math.Abs(v) > 1e15 {
			return false
		}
	}
	return true
}

// Summary prints the outcome of a cleaning run.
func (c *Console) Summary(s *processor.Summary) error {
	rows := [][]string{
		{"flights read", humanize.Comma(int64(s.FlightRows))},
		{"airlines read", humanize.Comma(int64(s.AirlineRows))},
		{"airports read", humanize.Comma(int64(s.AirportRows))},
		{"rows written", humanize.Comma(int64(s.Rows))},
		{"columns", humanize.Comma(int64(s.Columns))},
	}
	for _, j := range s.Joins {
		rows = append(rows, []string{j.Name + " unmatched", humanize.Comma(int64(j.Unmatched))})
	}

	sinks := make([]string, 0, len(s.Outputs))
	for name := range s.Outputs {
		sinks = append(sinks, name)
	}
	sort.Strings(sinks)
	for _, name := range sinks {
		rows = append(rows, []string{name, s.Outputs[name]})
	}
	rows = append(rows, []string{"duration", s.Duration.Round(time.Millisecond).String()})

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Rows(rows...).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return headerCellStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(c.w, lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Cleaning summary"), t.String()))
	return err
}
