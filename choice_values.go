package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// FilterOption is one checkbox of a filter group.
type FilterOption struct {
	Value   string
	Count   int
	Checked bool
	InputID string
}

// FilterGroup is the filter panel section for one choice column.
type FilterGroup struct {
	ColumnID  string
	Label     string
	InputName string
	Options   []FilterOption
}

// choiceValues counts records per value of a choice column. Declared choices
// are always listed; undeclared string values found in records are appended.
func choiceValues(records []Record, col Column) []ChoiceValueOption {
	counts := make(map[string]int)
	var observed []string
	for _, rec := range records {
		value := rec.Get(col.ID)
		// counts agree with what the filter keeps
		if value.Kind != KindString || value.Str == "" {
			continue
		}
		text := value.Str
		if _, ok := counts[text]; !ok {
			observed = append(observed, text)
		}
		counts[text]++
	}

	declared := make(map[string]bool, len(col.Choices))
	values := make([]ChoiceValueOption, 0, len(col.Choices)+len(observed))
	for _, choice := range col.Choices {
		declared[choice] = true
		values = append(values, ChoiceValueOption{Value: choice, Count: counts[choice], Declared: true})
	}
	for _, text := range observed {
		if !declared[text] {
			values = append(values, ChoiceValueOption{Value: text, Count: counts[text]})
		}
	}
	return sortChoiceValues(values)
}

// filterGroups builds the filter panel: one group per choice column with
// declared choices, in declaration order.
func filterGroups(columns []Column, records []Record, state FilterState) []FilterGroup {
	var groups []FilterGroup
	for _, col := range columns {
		if col.Type != ColumnTypeChoice || len(col.Choices) == 0 {
			continue
		}
		counts := make(map[string]int, len(col.Choices))
		for _, v := range choiceValues(records, col) {
			counts[v.Value] = v.Count
		}

		group := FilterGroup{ColumnID: col.ID, Label: col.Label, InputName: filterParamPrefix + col.ID}
		for _, choice := range col.Choices {
			group.Options = append(group.Options, FilterOption{
				Value:   choice,
				Count:   counts[choice],
				Checked: state.Has(col.ID, choice),
				InputID: fmt.Sprintf("%s-%s", col.ID, choice),
			})
		}
		groups = append(groups, group)
	}
	return groups
}

// GetChoiceValues returns the value counts for one choice column
func (s *Service) GetChoiceValues(columnID string) (*ChoiceValuesResponse, error) {
	data, err := s.dataset()
	if err != nil {
		return nil, err
	}

	col, ok := data.column(columnID)
	if !ok {
		return nil, fmt.Errorf("column with id %q not found", columnID)
	}
	if !col.IsChoice() {
		return nil, fmt.Errorf("column %q is not a choice column", columnID)
	}

	return &ChoiceValuesResponse{
		ColumnID:     col.ID,
		ColumnLabel:  col.Label,
		Values:       choiceValues(data.Records, col),
		TotalRecords: len(data.Records),
	}, nil
}

func (s *Service) handleGetChoiceValues(w http.ResponseWriter, r *http.Request) {
	columnID := mux.Vars(r)["columnId"]

	response, err := s.GetChoiceValues(columnID)
	if err != nil {
		if s.loadFailed() {
			respondError(w, http.StatusServiceUnavailable, s.msgs.LoadError)
			return
		}
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, response)
}
