package calculator

import (
	"math"
	"sort"
	"time"

	"GapScout/internal/model"
)

// HourlyInterest reduces samples to hour -> value for those whose calendar
// date in loc equals day and whose hour is listed. Later samples win.
func HourlyInterest(points []model.TrendPoint, day time.Time, hours []int, loc *time.Location) map[int]float64 {
	want := make(map[int]bool, len(hours))
	for _, h := range hours {
		want[h] = true
	}
	y, m, d := day.Date()
	out := make(map[int]float64)
	for _, p := range points {
		lt := p.Time.In(loc)
		py, pm, pd := lt.Date()
		if py != y || pm != m || pd != d || !want[lt.Hour()] {
			continue
		}
		out[lt.Hour()] = p.Value
	}
	return out
}

// MatchingHours lists hours present in both maps, ascending.
func MatchingHours(current, previous map[int]float64) []int {
	var hours []int
	for h := range current {
		if _, ok := previous[h]; ok {
			hours = append(hours, h)
		}
	}
	sort.Ints(hours)
	return hours
}

// TrendChange compares summed interest over matching hours. It is 0 when
// there are no matching hours and +Inf when the previous sum is 0.
func TrendChange(current, previous map[int]float64) float64 {
	hours := MatchingHours(current, previous)
	if len(hours) == 0 {
		return 0
	}
	var cur, prev float64
	for _, h := range hours {
		cur += current[h]
		prev += previous[h]
	}
	if prev == 0 {
		return math.Inf(1)
	}
	return (cur - prev) / prev * 100
}

// HourChange is the change from hour from to hour to within one day. It is
// nil unless both hours are present and the base is non-zero.
func HourChange(values map[int]float64, from, to int) *float64 {
	base, ok := values[from]
	if !ok || base == 0 {
		return nil
	}
	next, ok := values[to]
	if !ok {
		return nil
	}
	v := (next - base) / base * 100
	return &v
}

// MeetsThreshold treats +Inf as always passing and NaN as never passing.
func MeetsThreshold(v, min float64) bool {
	if math.IsNaN(v) {
		return false
	}
	return math.IsInf(v, 1) || v >= min
}
