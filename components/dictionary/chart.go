package dictionary

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "240px"

// GroupChart renders a bar chart of item counts per dictionary type.
type GroupChart struct {
	cache      RenderCache
	theme      string
	assetsHost string
	translator TranslationService
}

// GroupChartOption customizes chart rendering.
type GroupChartOption func(*GroupChart)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) GroupChartOption {
	return func(c *GroupChart) {
		c.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) GroupChartOption {
	return func(c *GroupChart) {
		if theme != "" {
			c.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the host the echarts runtime loads from.
func WithChartAssetsHost(host string) GroupChartOption {
	return func(c *GroupChart) {
		c.assetsHost = host
	}
}

// WithChartTranslator overrides chart titles through the host translator.
func WithChartTranslator(translator TranslationService) GroupChartOption {
	return func(c *GroupChart) {
		c.translator = translator
	}
}

// NewGroupChart builds a chart renderer with a five minute cache.
func NewGroupChart(options ...GroupChartOption) *GroupChart {
	c := &GroupChart{
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Render returns standalone chart HTML, or "" when there are no groups.
// themeOverride wins over the configured theme when set.
func (c *GroupChart) Render(ctx context.Context, groups []Group, locale, themeOverride string) (string, error) {
	if c == nil || len(groups) == 0 {
		return "", nil
	}
	theme := c.theme
	if themeOverride = strings.TrimSpace(themeOverride); themeOverride != "" {
		theme = themeOverride
	}
	title := translateOrFallback(ctx, c.translator, locale, "chart.title", nil)
	series := translateOrFallback(ctx, c.translator, locale, "chart.series", nil)

	axis := make([]string, len(groups))
	data := make([]opts.BarData, len(groups))
	for i, g := range groups {
		axis[i] = g.Type
		data[i] = opts.BarData{Name: g.Type, Value: g.Count}
	}

	renderFn := func() (string, error) {
		bar := charts.NewBar()
		bar.SetGlobalOptions(c.globalChartOptions(title, theme)...)
		bar.SetXAxis(axis)
		bar.AddSeries(series, data)
		return renderChart(bar)
	}
	if c.cache == nil {
		return renderFn()
	}
	key := fmt.Sprintf("groups:%s:%s:%s", theme, normalizeLocale(locale), contentHash(axisCounts(groups)))
	return c.cache.GetOrRender(key, renderFn)
}

func (c *GroupChart) globalChartOptions(title, theme string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if c.assetsHost != "" {
		initOpts.AssetsHost = c.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func axisCounts(groups []Group) []any {
	out := make([]any, 0, len(groups)*2)
	for _, g := range groups {
		out = append(out, g.Type, g.Count)
	}
	return out
}
