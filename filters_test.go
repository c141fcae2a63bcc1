package main

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cityRecords() []Record {
	return []Record{
		makeRecord("1", map[string]Value{"id": NumberValue(1), "city": StringValue("Paris")}),
		makeRecord("2", map[string]Value{"id": NumberValue(2), "city": StringValue("Lyon")}),
	}
}

func TestFilterRecordsByCity(t *testing.T) {
	got := filterRecords(cityRecords(), FilterState{"city": {"Lyon"}})
	assert.Equal(t, []string{"2"}, recordKeys(got))
}

func TestFilterRecordsEmptyStateIsIdentity(t *testing.T) {
	records := cityRecords()
	got := filterRecords(records, FilterState{})
	require.Len(t, got, len(records))
	assert.Same(t, &records[0], &got[0], "empty filter must return the input slice")
}

func TestFilterRecordsIsIdempotent(t *testing.T) {
	_, records := testFixtures(t)
	states := []FilterState{
		{},
		{"ville": {"Paris"}},
		{"ville": {"Paris", "Lyon"}},
		{"ville": {"Lyon"}, "nom": {"Bruno"}},
		{"ville": {"Nantes"}},
	}
	for _, state := range states {
		once := filterRecords(records, state)
		twice := filterRecords(once, state)
		if diff := cmp.Diff(recordKeys(once), recordKeys(twice)); diff != "" {
			t.Fatalf("filter not idempotent for %v (-once +twice):\n%s", state, diff)
		}
	}
}

func TestFilterRecordsSoundAndComplete(t *testing.T) {
	_, records := testFixtures(t)
	state := FilterState{"ville": {"Paris", "Lyon"}, "nom": {"Alice"}}

	got := filterRecords(records, state)
	kept := make(map[string]bool)
	for _, r := range got {
		kept[r.Key] = true
		for col, accepted := range state {
			assert.Contains(t, accepted, r.Get(col).Text())
		}
	}
	for _, r := range records {
		if kept[r.Key] {
			continue
		}
		failsOne := false
		for col := range state {
			if !state.Has(col, r.Get(col).Text()) {
				failsOne = true
			}
		}
		assert.True(t, failsOne, "record %s excluded without failing a check", r.Key)
	}
	assert.Equal(t, []string{"1"}, recordKeys(got))
}

// Multi-valued fields are compared as a whole against scalar accepted values,
// so they never match. This mirrors the upstream widget behavior.
func TestFilterRecordsListFieldNeverMatches(t *testing.T) {
	_, records := testFixtures(t)

	got := filterRecords(records, FilterState{"specialites": {"TCC"}})
	assert.Empty(t, got, "Alice has [TCC EMDR] and must not match TCC")

	got = filterRecords(records, FilterState{"specialites": {"Hypnose"}})
	assert.Equal(t, []string{"2"}, recordKeys(got), "scalar value still matches")
}

func TestFilterRecordsMissingFieldExcluded(t *testing.T) {
	records := []Record{makeRecord("a", map[string]Value{})}
	assert.Empty(t, filterRecords(records, FilterState{"city": {"Paris"}}))
}

func TestFilterStateToggle(t *testing.T) {
	state := FilterState{}
	state.Toggle("city", "Paris", true)
	state.Toggle("city", "Paris", true)
	state.Toggle("city", "Lyon", true)
	assert.Equal(t, []string{"Paris", "Lyon"}, state["city"])

	state.Toggle("city", "Paris", false)
	assert.Equal(t, []string{"Lyon"}, state["city"])

	state.Toggle("city", "Lyon", false)
	_, present := state["city"]
	assert.False(t, present, "removing the last value removes the key")

	state.Toggle("city", "Nowhere", false)
	assert.Empty(t, state)
}

func TestFilterStateQueryRoundTrip(t *testing.T) {
	q, err := url.ParseQuery("f.city=Paris&f.city=Lyon&f.kind=&sort=city&other=x")
	require.NoError(t, err)

	state := parseFilterState(q)
	assert.Equal(t, FilterState{"city": {"Paris", "Lyon"}}, state)

	out := url.Values{}
	state.Encode(out)
	assert.Equal(t, "f.city=Paris&f.city=Lyon", out.Encode())
}

func TestFilterStateCloneIsIndependent(t *testing.T) {
	state := FilterState{"city": {"Paris"}}
	clone := state.Clone()
	clone.Toggle("city", "Lyon", true)
	assert.Equal(t, []string{"Paris"}, state["city"])
}

func TestFilterRecordsOnlyStringsMatch(t *testing.T) {
	records := []Record{
		makeRecord("n", map[string]Value{"c": NumberValue(5)}),
		makeRecord("b", map[string]Value{"c": BoolValue(true)}),
		makeRecord("s", map[string]Value{"c": StringValue("5")}),
	}

	got := filterRecords(records, FilterState{"c": {"5", "true"}})
	assert.Equal(t, []string{"s"}, recordKeys(got), "numbers and booleans never equal a string")
}
