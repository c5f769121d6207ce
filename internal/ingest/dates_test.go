package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialToDate(t *testing.T) {
	tests := []struct {
		name     string
		serial   float64
		expected string
	}{
		{
			name:     "first day of 2025",
			serial:   45658,
			expected: "2025-01-01",
		},
		{
			name:     "mid-month serial",
			serial:   45672,
			expected: "2025-01-15",
		},
		{
			name:     "unix epoch",
			serial:   25569,
			expected: "1970-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SerialToDate(tt.serial))
		})
	}
}

func TestNormalizeDateCell(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
		ok       bool
	}{
		{
			name:     "ISO date string passes through",
			value:    "2026-03-15",
			expected: "2026-03-15",
			ok:       true,
		},
		{
			name:     "slash separated date",
			value:    "2026/03/15",
			expected: "2026-03-15",
			ok:       true,
		},
		{
			name:     "European day first date",
			value:    "15/03/2026",
			expected: "2026-03-15",
			ok:       true,
		},
		{
			name:     "Excel serial as float",
			value:    float64(45658),
			expected: "2025-01-01",
			ok:       true,
		},
		{
			name:     "Excel serial as raw string cell",
			value:    "45658",
			expected: "2025-01-01",
			ok:       true,
		},
		{
			name:     "datetime string keeps only the date",
			value:    "2026-03-15 08:30:00",
			expected: "2026-03-15",
			ok:       true,
		},
		{
			name:  "nil cell is dropped",
			value: nil,
			ok:    false,
		},
		{
			name:  "empty string is dropped",
			value: "   ",
			ok:    false,
		},
		{
			name:  "garbage is dropped, not an error",
			value: "totalt",
			ok:    false,
		},
		{
			name:  "non-positive serial is dropped",
			value: float64(0),
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, ok := normalizeDateCell(tt.value)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, date)
			}
		})
	}
}
