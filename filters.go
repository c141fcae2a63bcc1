package main

import (
	"net/url"
	"slices"
	"sort"
	"strings"
)

// filterParamPrefix prefixes query keys that carry filter values, e.g. f.city=Paris.
const filterParamPrefix = "f."

// FilterState maps a column id to its accepted values. A key is present only
// while its value set is non-empty.
type FilterState map[string][]string

// Toggle adds or removes an accepted value for a column.
func (f FilterState) Toggle(columnID, value string, checked bool) {
	values := f[columnID]
	if checked {
		if !slices.Contains(values, value) {
			f[columnID] = append(values, value)
		}
		return
	}

	values = slices.DeleteFunc(slices.Clone(values), func(v string) bool { return v == value })
	if len(values) == 0 {
		delete(f, columnID)
		return
	}
	f[columnID] = values
}

// Has reports whether the value is accepted for the column.
func (f FilterState) Has(columnID, value string) bool {
	return slices.Contains(f[columnID], value)
}

// Clone returns an independent copy.
func (f FilterState) Clone() FilterState {
	out := make(FilterState, len(f))
	for k, v := range f {
		out[k] = slices.Clone(v)
	}
	return out
}

// Encode writes the filter into query values with sorted keys.
func (f FilterState) Encode(q url.Values) {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range f[k] {
			q.Add(filterParamPrefix+k, v)
		}
	}
}

// parseFilterState reads f.<column> query keys, dropping empty values.
func parseFilterState(q url.Values) FilterState {
	state := FilterState{}
	for key, values := range q {
		columnID, ok := strings.CutPrefix(key, filterParamPrefix)
		if !ok || columnID == "" {
			continue
		}
		for _, v := range values {
			if v != "" {
				state.Toggle(columnID, v, true)
			}
		}
	}
	return state
}

// filterRecords keeps records whose raw value for every filtered column is one
// of the accepted values. An empty state returns the input unchanged.
func filterRecords(records []Record, state FilterState) []Record {
	if len(state) == 0 {
		return records
	}

	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if matchesFilter(rec, state) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func matchesFilter(rec Record, state FilterState) bool {
	for columnID, accepted := range state {
		if len(accepted) == 0 {
			continue
		}
		value := rec.Get(columnID)
		if !slices.ContainsFunc(accepted, value.MatchesScalar) {
			return false
		}
	}
	return true
}
