// Package charts renders balance overviews as PNG images.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"finanzas/internal/core"
)

type ChartGenerator struct{}

func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

// GenerateBalanceChart renders one bar per account showing its net
// balance. Returns nil bytes when there is nothing to draw, so the
// caller can answer 204 instead of shipping an empty image.
func (g *ChartGenerator) GenerateBalanceChart(accounts []core.Account, balances map[int64]core.Balance) ([]byte, error) {
	bars := make([]chart.Value, 0, len(accounts))
	hasData := false
	for _, a := range accounts {
		b := balances[a.ID]
		if b.NetCents != 0 {
			hasData = true
		}
		bars = append(bars, chart.Value{
			Label: a.Name,
			Value: float64(b.NetCents) / 100.0,
		})
	}
	if len(bars) == 0 || !hasData {
		return nil, nil
	}

	graph := chart.BarChart{
		Title:    "Net balance per account",
		Width:    800,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.2f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		XAxis: chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render balance chart: %w", err)
	}
	return buf.Bytes(), nil
}
