// workbook.go
package render

import (
	"fmt"
	"strings"
	"time"

	"FlightDelayAnalysis/src/analysis"

	"github.com/xuri/excelize/v2"
)

// AboutSheet 报告首页
const AboutSheet = "about"

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// Meta describes the run that produced a workbook.
type Meta struct {
	RunID     string
	Source    string
	Rows      int
	Generated time.Time
}

// WriteWorkbook 将分析结果写入Excel，每个结果一个工作表并附带原生图表
func WriteWorkbook(path string, meta Meta, results []analysis.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AboutSheet); err != nil {
		return fmt.Errorf("重命名工作表失败: %w", err)
	}
	if err := writeAbout(f, meta, results); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("创建样式失败: %w", err)
	}

	used := map[string]bool{AboutSheet: true}
	for _, res := range results {
		name := SheetName(res.ID, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("创建工作表 %s 失败: %w", name, err)
		}
		if err := writeResult(f, name, res, bold); err != nil {
			return fmt.Errorf("%s/%s: %w", res.Section, res.ID, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}

func writeAbout(f *excelize.File, meta Meta, results []analysis.Result) error {
	generated := meta.Generated
	if generated.IsZero() {
		generated = time.Now()
	}
	rows := [][]interface{}{
		{"run id", meta.RunID},
		{"source", meta.Source},
		{"rows", meta.Rows},
		{"generated", generated.Format(time.RFC3339)},
		{"results", len(results)},
	}
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue(AboutSheet, cell, v); err != nil {
				return fmt.Errorf("写入 %s 失败: %w", cell, err)
			}
		}
	}
	return f.SetColWidth(AboutSheet, "A", "B", 24)
}

func writeResult(f *excelize.File, sheet string, res analysis.Result, headerStyle int) error {
	set := func(col, row int, v interface{}) error {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		return f.SetCellValue(sheet, cell, v)
	}

	if err := set(1, 1, res.XLabel); err != nil {
		return err
	}
	if err := set(2, 1, res.YLabel); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	n := len(res.Labels)
	if res.Kind == analysis.KindScatter {
		n = len(res.Points)
		for i, p := range res.Points {
			if err := set(1, i+2, p.X); err != nil {
				return err
			}
			if err := set(2, i+2, p.Y); err != nil {
				return err
			}
		}
	} else {
		for i, l := range res.Labels {
			if err := set(1, i+2, l); err != nil {
				return err
			}
			if err := set(2, i+2, res.Values[i]); err != nil {
				return err
			}
		}
	}

	// title and notes sit beside the data, the chart below them
	if err := set(4, 1, res.Title); err != nil {
		return err
	}
	for i, note := range res.Notes {
		if err := set(4, i+2, note); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "B", 18); err != nil {
		return err
	}
	if n == 0 {
		return set(4, len(res.Notes)+2, "no data")
	}

	anchor, _ := excelize.CoordinatesToCellName(4, len(res.Notes)+3)
	return f.AddChart(sheet, anchor, chartFor(sheet, res, n))
}

// chartFor builds the native chart over the data block A2:B(n+1).
func chartFor(sheet string, res analysis.Result, n int) *excelize.Chart {
	ref := quoteSheet(sheet)
	series := excelize.ChartSeries{
		Name:       fmt.Sprintf("%s!$B$1", ref),
		Categories: fmt.Sprintf("%s!$A$2:$A$%d", ref, n+1),
		Values:     fmt.Sprintf("%s!$B$2:$B$%d", ref, n+1),
	}

	chart := &excelize.Chart{
		Title:     []excelize.RichTextRun{{Text: res.Title}},
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{Width: 640, Height: 360},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: res.XLabel}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: res.YLabel}}},
	}

	switch res.Kind {
	case analysis.KindLine:
		chart.Type = excelize.Line
	case analysis.KindPie:
		chart.Type = excelize.Pie
		chart.Legend = excelize.ChartLegend{Position: "right"}
		chart.PlotArea = excelize.ChartPlotArea{ShowPercent: true}
		chart.XAxis = excelize.ChartAxis{}
		chart.YAxis = excelize.ChartAxis{}
	case analysis.KindScatter:
		chart.Type = excelize.Scatter
		series.Marker = excelize.ChartMarker{Symbol: "circle", Size: 3}
		series.Line = excelize.ChartLine{Type: excelize.ChartLineNone}
	default:
		chart.Type = excelize.Col
	}
	chart.Series = []excelize.ChartSeries{series}
	return chart
}

// SheetName derives a unique Excel sheet name from a result id.
func SheetName(id string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\'`, r) {
			return '_'
		}
		return r
	}, id)
	if base == "" {
		base = "result"
	}
	if len([]rune(base)) > maxSheetName {
		base = string([]rune(base)[:maxSheetName])
	}

	name := base
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
