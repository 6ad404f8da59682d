// Package aggregate groups rows into label counts and numeric summaries for
// dashboard charts.
package aggregate

import (
	"sort"
	"strings"

	"buddhist-lent/pledgeboard/internal/constants"
)

type Bucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type Summary struct {
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// Counter tallies labels. Blank labels land in the Unknown bucket so no row
// is ever dropped.
type Counter struct {
	counts map[string]int64
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int64)}
}

func (c *Counter) Add(label string) {
	c.counts[Normalize(label)]++
}

// AddPtr treats nil like a blank label.
func (c *Counter) AddPtr(label *string) {
	if label == nil {
		c.Add("")
		return
	}
	c.Add(*label)
}

func (c *Counter) Buckets() []Bucket {
	out := make([]Bucket, 0, len(c.counts))
	for label, n := range c.counts {
		out = append(out, Bucket{Label: label, Count: n})
	}
	SortBuckets(out)
	return out
}

// Accumulator sums values that are present and non-zero.
type Accumulator struct {
	sum float64
	n   int64
}

func (a *Accumulator) Add(v float64) {
	if v == 0 {
		return
	}
	a.sum += v
	a.n++
}

func (a *Accumulator) AddInt64Ptr(v *int64) {
	if v != nil {
		a.Add(float64(*v))
	}
}

func (a *Accumulator) Summary() Summary {
	return NewSummary(a.sum, a.n)
}

// NewSummary derives the average; an empty set averages to zero.
func NewSummary(sum float64, count int64) Summary {
	s := Summary{Sum: sum, Count: count}
	if count > 0 {
		s.Average = sum / float64(count)
	}
	return s
}

// CountBy groups rows by key in one pass.
func CountBy[T any](rows []T, key func(T) string) []Bucket {
	c := NewCounter()
	for _, row := range rows {
		c.Add(key(row))
	}
	return c.Buckets()
}

// Summarize is the standalone form of Accumulator.
func Summarize(values []float64) Summary {
	var a Accumulator
	for _, v := range values {
		a.Add(v)
	}
	return a.Summary()
}

func Normalize(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return constants.UnknownBucket
	}
	return label
}

// SortBuckets orders by count descending, then label.
func SortBuckets(b []Bucket) {
	sort.SliceStable(b, func(i, j int) bool {
		if b[i].Count != b[j].Count {
			return b[i].Count > b[j].Count
		}
		return b[i].Label < b[j].Label
	})
}
