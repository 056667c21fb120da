package service

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":           "0.00",
		"5":           "5.00",
		"999.999":     "1,000.00",
		"1234.5":      "1,234.50",
		"123456":      "123,456.00",
		"1234567.891": "1,234,567.89",
		"-1234.5":     "-1,234.50",
		"-12":         "-12.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestParseLenientDecimal(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "0"},
		{"", "0"},
		{"  ", "0"},
		{"abc", "0"},
		{"12.5", "12.5"},
		{" 3 ", "3"},
		{2.0, "2"},
		{0.1, "0.1"},
		{7, "7"},
		{"-4", "-4"},
		{decimal.RequireFromString("1.25"), "1.25"},
		{json.Number("123456789.123456789"), "123456789.123456789"},
		{json.Number("1e3"), "1000"},
	}
	for _, tc := range cases {
		got := ParseLenientDecimal(tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "%v -> %s", tc.in, got)
	}
}

func TestIsBlankInput(t *testing.T) {
	assert.True(t, isBlankInput(nil))
	assert.True(t, isBlankInput(" "))
	assert.False(t, isBlankInput("0"))
	assert.False(t, isBlankInput(0.0))
}
