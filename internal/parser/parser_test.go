package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetapp/internal/core"
)

func TestParse_ExtractsVendorDateTotal(t *testing.T) {
	got := New().Parse("Coffee Hut\nDate: 2024-05-01\nLatte 4.50\nTotal 12.75\n")

	assert.Equal(t, "Coffee Hut", got.Vendor)
	require.NotNil(t, got.Date)
	assert.Equal(t, "2024-05-01", *got.Date)
	assert.Equal(t, 12.75, got.Total)
}

func TestParse_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n \t\n"} {
		got := Parse(text)
		assert.Equal(t, core.UnknownVendor, got.Vendor)
		assert.Nil(t, got.Date)
		assert.Equal(t, 0.0, got.Total)
	}
}

func TestParse_SlashDate(t *testing.T) {
	got := Parse("Market\n01/02/2024\nSubtotal 8.25\nTotal 9.99\n")

	assert.Equal(t, "Market", got.Vendor)
	require.NotNil(t, got.Date)
	assert.Equal(t, "01/02/2024", *got.Date)
	assert.Equal(t, 9.99, got.Total)
}

func TestParse_Vendor(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"leading blank lines", "\n\n   \n  Corner Shop  \nitem 1.00", "Corner Shop"},
		{"crlf line endings", "Deli\r\nTotal 3.00\r\n", "Deli"},
		{"single line", "Only vendor", "Only vendor"},
		{"bare carriage return", "Shop\rTotal 3.00", "Shop"},
		{"form feed", "\fKiosk\fTotal 3.00", "Kiosk"},
		{"unicode line separator", "Bakery\u2028Total 3.00", "Bakery"},
		{"next line control", "Cafe\u0085Total 3.00", "Cafe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text).Vendor)
		})
	}
}

func TestParse_Date(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first match wins", "Shop\n3/4/24 then 2024-01-01", "3/4/24"},
		{"iso before slash", "2023-12-31 and 12/31/2023", "2023-12-31"},
		{"inline in a line", "Shop Date:12/31/2023 10:00", "12/31/2023"},
		{"two digit year", "x 1/2/24", "1/2/24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text).Date
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}

	assert.Nil(t, Parse("Shop\nno date here\n12.00").Date)
}

func TestParse_TotalIsLargestAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"no amounts", "Shop\nthanks", 0},
		{"integers only", "Shop\nTotal 12", 0},
		{"single amount", "Shop\nTotal 5.00", 5},
		{"largest not last", "Shop\nSubtotal 20.00\nTotal 18.50", 20},
		{"three decimals truncated", "Shop\n12.345", 12.34},
		{"embedded in text", "Shop\nX99.99Y 1.01", 99.99},
		{"large value", "Shop\n1234567.89\n3.00", 1234567.89},
		{"beyond float range", "Shop\n" + strings.Repeat("9", 400) + ".00\n3.00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text).Total)
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	text := "A\n2024-01-01\n1.00 2.00 3.00"
	assert.Equal(t, Parse(text), Parse(text))
}
