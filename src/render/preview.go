// preview.go
package render

import (
	"FlightDelayAnalysis/src/analysis"

	"github.com/NimbleMarkets/ntcharts/barchart"
)

// previewBars caps the bars drawn so labels stay readable.
const previewBars = 12

// Preview draws a terminal bar chart of a labelled result.
func Preview(res analysis.Result, width, height int) string {
	n := len(res.Labels)
	if n > previewBars {
		n = previewBars
	}
	if n == 0 {
		return ""
	}

	data := make([]barchart.BarData, n)
	for i := 0; i < n; i++ {
		// bars grow from zero; negative means are drawn empty
		v := res.Values[i]
		if v < 0 {
			v = 0
		}
		data[i] = barchart.BarData{
			Label: shorten(res.Labels[i], 6),
			Values: []barchart.BarValue{
				{Name: res.Labels[i], Value: v, Style: barStyle},
			},
		}
	}

	chart := barchart.New(width, height)
	chart.PushAll(data)
	chart.Draw()
	return chart.View()
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
