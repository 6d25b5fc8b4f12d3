// Package parser extracts vendor, date and total from raw receipt OCR text.
//
// The rules are deliberately simple: the vendor is the first non-blank line,
// the date is the first ISO or US-style date anywhere in the text, and the
// total is the largest two-decimal amount. A subtotal or tax-inclusive line
// that exceeds the real total will be reported as the total.
package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"budgetapp/internal/core"
)

var (
	datePattern   = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})|(\d{1,2}/\d{1,2}/\d{2,4})`)
	amountPattern = regexp.MustCompile(`\d+\.\d{2}`)
)

// Result holds the fields parsed from a receipt.
type Result struct {
	Vendor string
	Date   *string
	Total  float64
}

// Parser implements the receipt parsing capability.
type Parser struct{}

// New returns a receipt parser.
func New() *Parser {
	return &Parser{}
}

// Parse extracts receipt fields from text. It never fails; missing fields
// fall back to UnknownVendor, a nil date and a zero total.
func (p *Parser) Parse(text string) Result {
	return Result{
		Vendor: vendor(text),
		Date:   firstDate(text),
		Total:  maxAmount(text),
	}
}

// Parse runs the default parser on text.
func Parse(text string) Result {
	return New().Parse(text)
}

// isLineBreak matches the line boundaries recognised in OCR output, which
// includes bare carriage returns and the Unicode line separators.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

func vendor(text string) string {
	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return core.UnknownVendor
}

func firstDate(text string) *string {
	m := datePattern.FindString(text)
	if m == "" {
		return nil
	}
	return &m
}

func maxAmount(text string) float64 {
	var (
		max   decimal.Decimal
		found bool
	)
	for _, m := range amountPattern.FindAllString(text, -1) {
		d, err := decimal.NewFromString(m)
		if err != nil {
			continue
		}
		if !found || d.GreaterThan(max) {
			max = d
			found = true
		}
	}
	if !found {
		return 0
	}
	// amounts too large for float64 are treated as unreadable
	f, _ := max.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}
