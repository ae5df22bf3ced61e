// Package chart renders per-episode returns as an HTML line chart, one
// series per policy.
package chart

// #region imports
import (
	"fmt"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// #endregion imports

// #region render

// RenderReturns writes a line chart of episode returns to path. series
// maps a policy name to its per-episode returns; series are plotted in
// name order so output is stable.
func RenderReturns(path, title string, series map[string][]float64) error {
	if len(series) == 0 {
		return fmt.Errorf("render returns: no series")
	}

	names := make([]string, 0, len(series))
	episodes := 0
	for name, returns := range series {
		names = append(names, name)
		if len(returns) > episodes {
			episodes = len(returns)
		}
	}
	sort.Strings(names)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "return"}),
	)

	xAxis := make([]string, episodes)
	for i := range xAxis {
		xAxis[i] = fmt.Sprintf("%d", i)
	}
	line = line.SetXAxis(xAxis)

	for _, name := range names {
		items := make([]opts.LineData, 0, len(series[name]))
		for _, r := range series[name] {
			items = append(items, opts.LineData{Value: r})
		}
		line.AddSeries(name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render returns: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render returns: %w", err)
	}
	return nil
}

// #endregion render
