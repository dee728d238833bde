package timeseries

import (
	"sort"
	"time"
)

// Point is one dated value in a daily series.
type Point struct {
	Date  time.Time // UTC midnight
	Value float64
}

// Series is a sparse daily series ordered by date. Missing days are simply
// absent so sample-size counts reflect true coverage.
type Series []Point

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date key.
func ParseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func (s Series) sorted() Series {
	sort.Slice(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
	return s
}

// Values returns the series values in date order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// index returns a date-keyed lookup for the series.
func (s Series) index() map[time.Time]float64 {
	m := make(map[time.Time]float64, len(s))
	for _, p := range s {
		m[p.Date] = p.Value
	}
	return m
}

// Align shifts the input series later by lag days and inner-joins it with
// the output series on date: the output on day d is paired with the input
// from day d-lag. Only dates present in both survive. The result is
// transient and never persisted.
func Align(input, output Series, lagDays int) (xs, ys []float64) {
	idx := input.index()
	for _, p := range output {
		key := p.Date.AddDate(0, 0, -lagDays)
		if v, ok := idx[key]; ok {
			xs = append(xs, v)
			ys = append(ys, p.Value)
		}
	}
	return xs, ys
}

// WindowSum returns the sum of values with date in (end-days, end].
func (s Series) WindowSum(end time.Time, days int) (sum float64, n int) {
	start := end.AddDate(0, 0, -days)
	for _, p := range s {
		if p.Date.After(start) && !p.Date.After(end) {
			sum += p.Value
			n++
		}
	}
	return sum, n
}
