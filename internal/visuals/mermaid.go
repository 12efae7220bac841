package visuals

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"capacity-mcp/internal/capacity"
)

// GenerateCapacityChart creates a Mermaid xychart-beta with one line of adjusted
// capacity per effective series over the date axis. Mermaid has no line legend,
// so each line is preceded by a comment naming its series.
func GenerateCapacityChart(dates []string, series []capacity.SeriesView) string {
	if len(dates) == 0 || len(series) == 0 {
		return ""
	}

	labels := make([]string, 0, len(dates))
	for _, d := range dates {
		labels = append(labels, quote(d))
	}

	minY, maxY := 0.0, 0.0
	for _, s := range series {
		for _, v := range s.Adjusted {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Adjusted Capacity\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Capacity\" %s --> %s\n", axisFloor(minY), axisCeil(minY, maxY)))

	for _, s := range series {
		values := make([]string, 0, len(dates))
		for i := range dates {
			v := 0.0
			if i < len(s.Adjusted) {
				v = s.Adjusted[i]
			}
			values = append(values, number(v))
		}
		sb.WriteString(fmt.Sprintf("    %%%% %s\n", s.Label))
		sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateBundleChart creates a Mermaid bar chart of one date's cards: the
// product-only entries followed by the product+size entries, each ranked ascending.
func GenerateBundleChart(bundle capacity.RenderBundle) string {
	entries := append(append([]capacity.BundleEntry{}, bundle.ProductOnly...), bundle.ProductSize...)
	if len(entries) == 0 {
		return ""
	}

	var labels []string
	var values []string
	minY, maxY := 0.0, 0.0
	for _, e := range entries {
		labels = append(labels, quote(e.Label))
		values = append(values, number(e.Capacity))
		minY = math.Min(minY, e.Capacity)
		maxY = math.Max(maxY, e.Capacity)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Capacity on %s\"\n", bundle.Date))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Capacity\" %s --> %s\n", axisFloor(minY), axisCeil(minY, maxY)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// axisCeil leaves 10% headroom above the largest value.
func axisCeil(minY, maxY float64) string {
	top := math.Ceil(maxY * 11 / 10)
	if top <= minY {
		top = minY + 1
	}
	return number(top)
}

func axisFloor(minY float64) string {
	if minY >= 0 {
		return "0"
	}
	return number(math.Floor(minY * 11 / 10))
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quote(s string) string {
	return strconv.Quote(strings.ReplaceAll(s, "\"", "'"))
}
