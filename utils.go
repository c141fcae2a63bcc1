package main

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Named("http").Warn("failed to encode response", zap.Error(err))
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// compareLabels compares two labels, optionally ignoring case
// Returns: -1 if a < b, 0 if a == b, 1 if a > b
func compareLabels(a, b string, ignoreCase bool) int {
	if ignoreCase {
		a = strings.ToLower(a)
		b = strings.ToLower(b)
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// sortChoiceValues orders options by count descending, then by value ascending.
func sortChoiceValues(values []ChoiceValueOption) []ChoiceValueOption {
	sorted := slices.Clone(values)
	slices.SortStableFunc(sorted, func(a, b ChoiceValueOption) int {
		if a.Count != b.Count {
			if a.Count > b.Count {
				return -1
			}
			return 1
		}
		return compareLabels(a.Value, b.Value, true)
	})
	return sorted
}
