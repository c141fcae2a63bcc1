package main

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// SortDirection is ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortState is the active sort column and its direction.
type SortState struct {
	Column    string
	Direction SortDirection
}

// SetColumn activates a column and resets the direction to ascending.
func (s *SortState) SetColumn(columnID string) {
	s.Column = columnID
	s.Direction = SortAsc
}

// ToggleDirection flips the direction; it is a no-op without an active column.
func (s *SortState) ToggleDirection() {
	if s.Column == "" {
		return
	}
	if s.Direction == SortDesc {
		s.Direction = SortAsc
	} else {
		s.Direction = SortDesc
	}
}

func (s SortState) Encode(q url.Values) {
	if s.Column == "" {
		return
	}
	q.Set("sort", s.Column)
	if s.Direction == SortDesc {
		q.Set("dir", string(SortDesc))
	}
}

func parseSortState(q url.Values) SortState {
	var s SortState
	s.SetColumn(q.Get("sort"))
	if s.Column != "" && strings.EqualFold(q.Get("dir"), string(SortDesc)) {
		s.Direction = SortDesc
	}
	return s
}

// sortRecords returns a stably sorted copy ordered by one column. An unset
// column returns the input unchanged.
func sortRecords(records []Record, columnID string, dir SortDirection) []Record {
	if columnID == "" {
		return records
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		cmp := compareValues(a.Get(columnID), b.Get(columnID))
		if dir == SortDesc {
			return -cmp
		}
		return cmp
	})
	return sorted
}

// primitive is a value reduced for loose ordering: either a string or a number.
type primitive struct {
	isString bool
	str      string
	num      float64
}

func toPrimitive(v Value) primitive {
	// falsy values sort as the empty string
	if !v.Truthy() {
		return primitive{isString: true}
	}
	switch v.Kind {
	case KindNumber:
		return primitive{num: v.Num}
	case KindBool:
		return primitive{num: 1}
	}
	return primitive{isString: true, str: v.Text()}
}

func (p primitive) number() float64 {
	if !p.isString {
		return p.num
	}
	s := strings.TrimSpace(p.str)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// compareValues orders two field values: strings lexicographically, anything
// else numerically. Incomparable pairs are equal.
func compareValues(a, b Value) int {
	pa, pb := toPrimitive(a), toPrimitive(b)
	if pa.isString && pb.isString {
		return compareLabels(pa.str, pb.str, false)
	}

	na, nb := pa.number(), pb.number()
	switch {
	case math.IsNaN(na) || math.IsNaN(nb):
		return 0
	case na < nb:
		return -1
	case na > nb:
		return 1
	}
	return 0
}
