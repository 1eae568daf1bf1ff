package dictionary

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupChartRendersCounts(t *testing.T) {
	cache := NewChartCache(time.Minute)
	chart := NewGroupChart(WithChartCache(cache), WithChartTheme("macarons"))
	groups := GroupByType(sampleItems())

	html, err := chart.Render(context.Background(), groups, "en", "")
	require.NoError(t, err)
	assert.Contains(t, html, "gender")
	assert.Contains(t, html, "status")
	assert.Contains(t, html, "macarons")
	assert.Contains(t, html, "Items per type")

	again, err := chart.Render(context.Background(), groups, "en", "")
	require.NoError(t, err)
	assert.Equal(t, html, again)
	assert.Equal(t, 1, cache.Len())

	_, err = chart.Render(context.Background(), groups, "en", "shine")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
}

func TestGroupChartEmpty(t *testing.T) {
	html, err := NewGroupChart().Render(context.Background(), nil, "en", "")
	require.NoError(t, err)
	assert.Empty(t, html)
}

func TestGroupChartLocalizedTitle(t *testing.T) {
	chart := NewGroupChart(WithChartCache(nil))
	html, err := chart.Render(context.Background(), GroupByType(sampleItems()), "zh-CN", "")
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "各类型字典项数量"), "expected localized chart title")
}

func TestGroupChartAssetsHost(t *testing.T) {
	chart := NewGroupChart(WithChartAssetsHost("https://assets.example.com/echarts/"))
	html, err := chart.Render(context.Background(), GroupByType(sampleItems()), "en", "")
	require.NoError(t, err)
	assert.Contains(t, html, "https://assets.example.com/echarts/")
}
