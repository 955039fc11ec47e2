// groups.go
package analysis

import (
	"fmt"
	"sort"
)

type group struct {
	count float64
	sum   float64
	n     float64 // non-NA values summed
	hits  float64
}

// groupBy accumulates per-key statistics. NA keys are skipped; NaN values
// count towards the group size but not the mean.
type groupBy map[string]*group

func (g groupBy) add(key string, value float64, hit bool) {
	grp, ok := g[key]
	if !ok {
		grp = &group{}
		g[key] = grp
	}
	grp.count++
	if hit {
		grp.hits++
	}
	if !isNaN(value) {
		grp.sum += value
		grp.n++
	}
}

func (g groupBy) counts() map[string]float64 {
	out := make(map[string]float64, len(g))
	for k, grp := range g {
		out[k] = grp.count
	}
	return out
}

// means omits groups without a single non-NA value.
func (g groupBy) means() map[string]float64 {
	out := make(map[string]float64, len(g))
	for k, grp := range g {
		if grp.n > 0 {
			out[k] = grp.sum / grp.n
		}
	}
	return out
}

// rates returns hits / count × 100 per group.
func (g groupBy) rates() map[string]float64 {
	out := make(map[string]float64, len(g))
	for k, grp := range g {
		out[k] = percent(grp.hits, grp.count)
	}
	return out
}

// ranked sorts by value descending, ties by label ascending.
func ranked(m map[string]float64) ([]string, []float64) {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := m[labels[i]], m[labels[j]]
		if a != b {
			return a > b
		}
		return labels[i] < labels[j]
	})
	values := make([]float64, len(labels))
	for i, l := range labels {
		values[i] = m[l]
	}
	return labels, values
}

func top(labels []string, values []float64, n int) ([]string, []float64) {
	if n > 0 && len(labels) > n {
		return labels[:n], values[:n]
	}
	return labels, values
}

// percent returns part / total × 100, 0 for an empty total.
func percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// formatRate 格式化百分比
func formatRate(rate float64) string {
	if rate == 100 {
		return "100%"
	}
	return fmt.Sprintf("%.2f%%", rate)
}
