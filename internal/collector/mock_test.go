package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTrendsFetcher_Synthetic(t *testing.T) {
	m := &MockTrendsFetcher{Synthetic: true}
	from := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	points, err := m.InterestOverTime(context.Background(), "AAA Stock", from, from.Add(47*time.Hour))
	require.NoError(t, err)
	require.Len(t, points, 48)
	assert.Equal(t, 1.0, points[0].Value)
	assert.Equal(t, 2.0, points[24].Value)
	assert.Equal(t, 1, m.Calls())
}

func TestMockTrendsFetcher_UnknownKeyword(t *testing.T) {
	m := &MockTrendsFetcher{}
	_, err := m.InterestOverTime(context.Background(), "AAA Stock", time.Now(), time.Now())
	assert.True(t, IsNotFound(err))
}

func TestMockMarketFetcher_Synthetic(t *testing.T) {
	m := &MockMarketFetcher{Price: 10}
	day := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	bar, err := m.DailyOpenClose(context.Background(), "AAA", day)
	require.NoError(t, err)
	assert.InDelta(t, 10.3, bar.Open, 1e-9)
	bars, err := m.MinuteBars(context.Background(), "AAA", day)
	require.NoError(t, err)
	assert.Len(t, bars, 720)

	_, err = (&MockMarketFetcher{}).TickerDetails(context.Background(), "AAA")
	assert.True(t, IsNotFound(err))
}
