// Package models - attribute value typing
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DataType is the declared type of an Attribute value. The value itself is
// always stored as text; DataType drives parsing, formatting and the form
// widget the admin surface should render.
type DataType string

const (
	DataTypeString   DataType = "string"
	DataTypeInteger  DataType = "integer"
	DataTypeFloat    DataType = "float"
	DataTypeBoolean  DataType = "boolean"
	DataTypeDate     DataType = "date"
	DataTypeDateTime DataType = "datetime"
	DataTypeJSON     DataType = "json"
)

// DataTypes lists all valid attribute data types.
var DataTypes = []DataType{
	DataTypeString,
	DataTypeInteger,
	DataTypeFloat,
	DataTypeBoolean,
	DataTypeDate,
	DataTypeDateTime,
	DataTypeJSON,
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Valid reports whether d is one of the known data types.
func (d DataType) Valid() bool {
	for _, dt := range DataTypes {
		if d == dt {
			return true
		}
	}
	return false
}

// Widget returns the form widget code the admin surface should render for
// values of this type.
func (d DataType) Widget() string {
	switch d {
	case DataTypeBoolean:
		return "checkbox"
	case DataTypeInteger:
		return "number"
	case DataTypeFloat:
		return "number-decimal"
	case DataTypeDate:
		return "date"
	case DataTypeDateTime:
		return "datetime-local"
	default:
		return "textarea"
	}
}

// TypedValue parses a stored text value according to the data type and
// returns a typed representation suitable for JSON output. An empty value
// yields nil. Malformed values return an error; the data layer never
// enforces value/type consistency, so callers decide how to surface it.
func (d DataType) TypedValue(raw string) (interface{}, error) {
	if raw == "" {
		return nil, nil
	}

	switch d {
	case DataTypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not a valid integer: %q", raw)
		}
		return n, nil
	case DataTypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("not a valid float: %q", raw)
		}
		return f, nil
	case DataTypeBoolean:
		return ParseBoolValue(raw), nil
	case DataTypeDate:
		t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("not a valid date (expected YYYY-MM-DD): %q", raw)
		}
		return t.Format(dateLayout), nil
	case DataTypeDateTime:
		t, err := time.Parse(dateTimeLayout, strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("not a valid datetime (expected YYYY-MM-DD HH:MM:SS): %q", raw)
		}
		return t.Format(dateTimeLayout), nil
	case DataTypeJSON:
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("not valid JSON: %v", err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// ParseBoolValue interprets a stored boolean value. Anything in the truthy
// set {true, 1, yes, on} (case-insensitive) is true, everything else false.
func ParseBoolValue(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// FormatBoolValue returns the canonical stored form of a boolean value.
func FormatBoolValue(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
