package leads

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "320px"

	ChartPipelineHealth   = "Pipeline Health"
	ChartAgentPerformance = "Agent Performance"
	ChartLeadVelocity     = "Lead Velocity"

	defaultChartCacheTTL = 5 * time.Minute
)

// RenderedCharts holds chart HTML for the dashboard page. Empty strings
// mean there was no data to plot.
type RenderedCharts struct {
	PipelineHealth   string `json:"pipeline_health"`
	AgentPerformance string `json:"agent_performance"`
	LeadVelocity     string `json:"lead_velocity"`
}

// ChartRenderer renders the dashboard datasets with go-echarts.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
	height     string
}

// ChartOption customizes renderer behavior.
type ChartOption func(*ChartRenderer)

// WithChartCache injects a render cache. Nil disables caching.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// WithChartHeight overrides the chart container height.
func WithChartHeight(height string) ChartOption {
	return func(r *ChartRenderer) {
		if height != "" {
			r.height = height
		}
	}
}

// NewChartRenderer builds a renderer with its own render cache.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{
		cache:  NewChartCache(defaultChartCacheTTL),
		theme:  types.ThemeWesteros,
		height: defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// RenderAll renders the three dashboard charts for view.
func (r *ChartRenderer) RenderAll(view DashboardView) (RenderedCharts, error) {
	var (
		out RenderedCharts
		err error
	)
	if out.PipelineHealth, err = r.StatusDonut(view.StatusBreakdown); err != nil {
		return RenderedCharts{}, err
	}
	if out.AgentPerformance, err = r.AgentBar(view.AgentPerformance); err != nil {
		return RenderedCharts{}, err
	}
	if out.LeadVelocity, err = r.VelocityLine(view.ActivityTimeline); err != nil {
		return RenderedCharts{}, err
	}
	return out, nil
}

// StatusDonut renders the pipeline breakdown as a donut chart.
func (r *ChartRenderer) StatusDonut(data []StatusDatum) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	return r.cached("pie", data, func() (string, error) {
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalChartOptions(ChartPipelineHealth)...)
		items := make([]opts.PieData, len(data))
		for i, d := range data {
			items[i] = opts.PieData{
				Name:      d.Status,
				Value:     d.Count,
				ItemStyle: &opts.ItemStyle{Color: d.Color},
			}
		}
		pie.AddSeries("Leads", items,
			charts.WithPieChartOpts(opts.PieChart{Radius: []string{"55%", "80%"}}),
		)
		return renderChart(pie)
	})
}

// AgentBar renders portfolio value per agent.
func (r *ChartRenderer) AgentBar(data []AgentDatum) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	return r.cached("bar", data, func() (string, error) {
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalChartOptions(ChartAgentPerformance)...)
		agents := make([]string, len(data))
		items := make([]opts.BarData, len(data))
		for i, d := range data {
			agents[i] = d.Agent
			items[i] = opts.BarData{
				Name:      FormatCurrency(d.TotalValue),
				Value:     d.TotalValue,
				ItemStyle: &opts.ItemStyle{Color: d.Color},
				Label: &opts.Label{
					Show:      opts.Bool(true),
					Position:  "top",
					Formatter: FormatCurrencyShort(d.TotalValue),
				},
			}
		}
		bar.SetXAxis(agents)
		bar.AddSeries("Portfolio Value", items)
		return renderChart(bar)
	})
}

// VelocityLine renders leads per activity day as a smooth line.
func (r *ChartRenderer) VelocityLine(data []ActivityDatum) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	return r.cached("line", data, func() (string, error) {
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalChartOptions(ChartLeadVelocity)...)
		days := make([]string, len(data))
		items := make([]opts.LineData, len(data))
		for i, d := range data {
			days[i] = FormatDayLabel(d.Day)
			items[i] = opts.LineData{Name: d.Day, Value: d.Count}
		}
		line.SetXAxis(days)
		line.AddSeries("Leads", items)
		line.SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: StatusColor(string(StatusNew))}),
		)
		return renderChart(line)
	})
}

func (r *ChartRenderer) cached(kind string, data any, render func() (string, error)) (string, error) {
	if r.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", kind, r.theme, r.assetsHost, contentHash(data))
	return r.cache.GetOrRender(key, render)
}

func (r *ChartRenderer) globalChartOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: r.height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(false)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", fmt.Errorf("leads: render chart: %w", err)
	}
	return buf.String(), nil
}
