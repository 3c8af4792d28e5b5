package gap

import "github.com/matzehuels/redline/pkg/core/geom"

// spanRule is one row of the edge-ordering table. a belongs to the leading
// shape (left-most or top-most), b to the trailing one.
type spanRule struct {
	name  string
	match func(a, b geom.Interval) bool
	span  func(a, b geom.Interval) geom.Interval
}

var spanRules = []spanRule{
	{
		name:  "b starts inside a and ends after it",
		match: func(a, b geom.Interval) bool { return b.Lo >= a.Lo && a.Hi >= b.Lo && b.Hi >= a.Hi },
		span:  func(a, b geom.Interval) geom.Interval { return geom.Interval{Lo: b.Lo, Hi: a.Hi} },
	},
	{
		name:  "a starts inside b and ends after it",
		match: func(a, b geom.Interval) bool { return a.Lo >= b.Lo && b.Hi >= a.Lo && a.Hi >= b.Hi },
		span:  func(a, b geom.Interval) geom.Interval { return geom.Interval{Lo: a.Lo, Hi: b.Hi} },
	},
	{
		name:  "a nested in b",
		match: func(a, b geom.Interval) bool { return a.Lo >= b.Lo && b.Hi >= a.Hi },
		span:  func(a, b geom.Interval) geom.Interval { return a },
	},
	{
		name:  "b nested in a",
		match: func(a, b geom.Interval) bool { return b.Lo >= a.Lo && a.Hi >= b.Hi },
		span:  func(a, b geom.Interval) geom.Interval { return b },
	},
	{
		name:  "a entirely before b",
		match: func(a, b geom.Interval) bool { return a.Hi < b.Lo },
		span:  func(a, b geom.Interval) geom.Interval { return geom.Interval{Lo: a.Hi, Hi: b.Lo} },
	},
	{
		name:  "b entirely before a",
		match: func(a, b geom.Interval) bool { return true },
		span:  func(a, b geom.Interval) geom.Interval { return geom.Interval{Lo: b.Hi, Hi: a.Lo} },
	},
}

// PerpendicularSpan returns the range a gap covers across its measuring axis,
// given the extents of the leading shape a and trailing shape b on that axis.
// It also returns the index of the table row that decided.
func PerpendicularSpan(a, b geom.Interval) (geom.Interval, int) {
	for i, r := range spanRules {
		if r.match(a, b) {
			return r.span(a, b), i
		}
	}
	// unreachable: the last row always matches
	last := len(spanRules) - 1
	return spanRules[last].span(a, b), last
}
