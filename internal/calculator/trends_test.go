package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GapScout/internal/model"
)

var pst = time.FixedZone("UTC-8", -8*60*60)

func TestHourlyInterest(t *testing.T) {
	points := []model.TrendPoint{
		{Time: time.Date(2024, 1, 4, 4, 0, 0, 0, pst), Value: 10},
		{Time: time.Date(2024, 1, 4, 5, 0, 0, 0, pst), Value: 20},
		{Time: time.Date(2024, 1, 4, 7, 0, 0, 0, pst), Value: 99}, // hour not of interest
		{Time: time.Date(2024, 1, 3, 4, 0, 0, 0, pst), Value: 5},  // other day
		// 14:00 UTC on Jan 4 is 06:00 at UTC-8.
		{Time: time.Date(2024, 1, 4, 14, 0, 0, 0, time.UTC), Value: 30},
	}
	got := HourlyInterest(points, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), []int{4, 5, 6}, pst)
	assert.Equal(t, map[int]float64{4: 10, 5: 20, 6: 30}, got)
}

func TestTrendChange(t *testing.T) {
	tests := []struct {
		name     string
		cur, prv map[int]float64
		want     float64
	}{
		{"increase", map[int]float64{4: 30, 5: 30}, map[int]float64{4: 10, 5: 10}, 200},
		{"decrease", map[int]float64{4: 5}, map[int]float64{4: 10}, -50},
		{"only matching hours count", map[int]float64{4: 20, 6: 100}, map[int]float64{4: 10, 5: 50}, 100},
		{"no matching hours", map[int]float64{4: 20}, map[int]float64{5: 10}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TrendChange(tt.cur, tt.prv), 1e-9)
		})
	}
}

func TestTrendChange_ZeroPreviousIsInfinite(t *testing.T) {
	got := TrendChange(map[int]float64{4: 12, 5: 3}, map[int]float64{4: 0, 5: 0})
	assert.True(t, math.IsInf(got, 1))
}

func TestHourChange(t *testing.T) {
	values := map[int]float64{4: 10, 5: 15, 6: 0}
	v := HourChange(values, 4, 5)
	require.NotNil(t, v)
	assert.InDelta(t, 50, *v, 1e-9)

	v = HourChange(values, 5, 6)
	require.NotNil(t, v)
	assert.InDelta(t, -100, *v, 1e-9)

	assert.Nil(t, HourChange(values, 6, 7), "base is zero")
	assert.Nil(t, HourChange(map[int]float64{4: 10}, 4, 5), "missing endpoint")
	assert.Nil(t, HourChange(map[int]float64{5: 10}, 4, 5), "missing base")
}

func TestMeetsThreshold(t *testing.T) {
	assert.True(t, MeetsThreshold(math.Inf(1), 50))
	assert.True(t, MeetsThreshold(50, 50))
	assert.False(t, MeetsThreshold(49.99, 50))
	assert.False(t, MeetsThreshold(math.NaN(), 0))
	assert.False(t, MeetsThreshold(math.Inf(-1), 0))
}
