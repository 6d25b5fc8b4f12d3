package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"budgetapp/internal/core"
)

const (
	colCategory     = "category"
	colMonthlyLimit = "monthly_limit"
	colSpent        = "spent"
	colPriorBalance = "prior_balance"
)

var headerCaser = cases.Lower(language.Und)

// ReadBudgetTable decodes an uploaded budget file into rows of cells, header
// first. The format is chosen by extension: .csv, or .xlsx/.xlsm (first sheet).
func ReadBudgetTable(filename string, data []byte) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return readCSV(data)
	case ".xlsx", ".xlsm":
		return readSpreadsheet(data)
	default:
		return nil, &core.UnsupportedFormatError{Ext: ext}
	}
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, &core.ValidationError{Field: "file", Message: fmt.Sprintf("invalid CSV: %v", err)}
	}
	return records, nil
}

func readSpreadsheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &core.ValidationError{Field: "file", Message: fmt.Sprintf("invalid spreadsheet: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// NormalizeBudgetTable maps a header-first table onto budgets.
//
// Column names are trimmed and lower-cased; category is required and the
// numeric columns default to 0 when absent. Rows with a blank category are
// dropped. Numeric cells that do not parse become 0.
func NormalizeBudgetTable(table [][]string) ([]core.Budget, error) {
	if len(table) == 0 {
		return nil, &core.MissingColumnError{Column: colCategory}
	}

	index := map[string]int{}
	for i, h := range table[0] {
		name := headerCaser.String(strings.TrimSpace(h))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	catCol, ok := index[colCategory]
	if !ok {
		return nil, &core.MissingColumnError{Column: colCategory}
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	budgets := make([]core.Budget, 0, len(table)-1)
	for _, row := range table[1:] {
		if catCol >= len(row) {
			continue
		}
		category := strings.TrimSpace(row[catCol])
		if category == "" {
			continue
		}
		budgets = append(budgets, core.Budget{
			Category:     category,
			MonthlyLimit: coerceFloat(cell(row, colMonthlyLimit)),
			Spent:        coerceFloat(cell(row, colSpent)),
			PriorBalance: coerceFloat(cell(row, colPriorBalance)),
		})
	}
	return budgets, nil
}

// coerceFloat parses s leniently; anything unparsable or non-finite is 0.
func coerceFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
