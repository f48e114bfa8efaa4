// Package security provides SQL search-pattern utilities for Atlas
package security

import "strings"

// EscapeLikePattern escapes special characters in LIKE patterns
func EscapeLikePattern(pattern string) string {
	// Escape the special characters used in SQL LIKE: %, _, and \
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, `%`, `\%`)
	pattern = strings.ReplaceAll(pattern, `_`, `\_`)
	return pattern
}

// SearchPattern escapes a search term and wraps it for substring matching.
func SearchPattern(term string) string {
	return "%" + EscapeLikePattern(term) + "%"
}

// MultiSearchCondition builds a case-insensitive substring condition across
// the given columns, returning the condition string and its parameters.
// Column names must come from a compile-time whitelist, never user input.
func MultiSearchCondition(columns []string, term string) (string, []interface{}) {
	if len(columns) == 0 || term == "" {
		return "", nil
	}

	pattern := SearchPattern(term)
	conditions := make([]string, 0, len(columns))
	params := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		conditions = append(conditions, `LOWER(`+col+`) LIKE LOWER(?) ESCAPE '\'`)
		params = append(params, pattern)
	}

	return "(" + strings.Join(conditions, " OR ") + ")", params
}
