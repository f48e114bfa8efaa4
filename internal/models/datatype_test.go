package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeValid(t *testing.T) {
	for _, dt := range DataTypes {
		assert.True(t, dt.Valid(), string(dt))
	}
	assert.False(t, DataType("decimal").Valid())
	assert.False(t, DataType("").Valid())
}

func TestTypedValue(t *testing.T) {
	cases := []struct {
		dataType DataType
		raw      string
		want     interface{}
	}{
		{DataTypeString, "hello", "hello"},
		{DataTypeInteger, "42", int64(42)},
		{DataTypeInteger, " 42 ", int64(42)},
		{DataTypeFloat, "3.14", 3.14},
		{DataTypeBoolean, "true", true},
		{DataTypeBoolean, "Yes", true},
		{DataTypeBoolean, "0", false},
		{DataTypeBoolean, "nope", false},
		{DataTypeDate, "2024-06-01", "2024-06-01"},
		{DataTypeDateTime, "2024-06-01 13:45:00", "2024-06-01 13:45:00"},
		{DataTypeJSON, `{"a":1}`, map[string]interface{}{"a": float64(1)}},
	}
	for _, tc := range cases {
		got, err := tc.dataType.TypedValue(tc.raw)
		require.NoError(t, err, "%s %q", tc.dataType, tc.raw)
		assert.Equal(t, tc.want, got, "%s %q", tc.dataType, tc.raw)
	}
}

func TestTypedValueEmpty(t *testing.T) {
	for _, dt := range DataTypes {
		got, err := dt.TypedValue("")
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestTypedValueMalformed(t *testing.T) {
	cases := []struct {
		dataType DataType
		raw      string
	}{
		{DataTypeInteger, "forty-two"},
		{DataTypeInteger, "3.14"},
		{DataTypeFloat, "pi"},
		{DataTypeDate, "01/06/2024"},
		{DataTypeDateTime, "2024-06-01"},
		{DataTypeJSON, "{broken"},
	}
	for _, tc := range cases {
		_, err := tc.dataType.TypedValue(tc.raw)
		assert.Error(t, err, "%s %q", tc.dataType, tc.raw)
	}
}

func TestBoolValueRoundTrip(t *testing.T) {
	assert.Equal(t, "true", FormatBoolValue(true))
	assert.Equal(t, "false", FormatBoolValue(false))
	assert.True(t, ParseBoolValue(FormatBoolValue(true)))
	assert.False(t, ParseBoolValue(FormatBoolValue(false)))
}

func TestWidget(t *testing.T) {
	assert.Equal(t, "checkbox", DataTypeBoolean.Widget())
	assert.Equal(t, "number", DataTypeInteger.Widget())
	assert.Equal(t, "number-decimal", DataTypeFloat.Widget())
	assert.Equal(t, "date", DataTypeDate.Widget())
	assert.Equal(t, "datetime-local", DataTypeDateTime.Widget())
	assert.Equal(t, "textarea", DataTypeString.Widget())
	assert.Equal(t, "textarea", DataTypeJSON.Widget())
}

func TestIndentedName(t *testing.T) {
	app := Application{Name: "Portal"}
	assert.Equal(t, "Portal", app.IndentedName())

	app.Depth = 2
	assert.Equal(t, "—— Portal", app.IndentedName())
}
