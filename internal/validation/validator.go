// =============================================================================
// Delivery Reconciler - Validation Engine
// =============================================================================
//
// This module checks decoded primary-sheet rows before they are imported.
// The importer itself never fails on bad cells (every value is coerced), so
// this is where silent coercions are made visible:
//   - Rows without a driver (skipped on import)
//   - Count cells that are not numbers (imported as 0)
//   - Negative counts (imported as 0)
//   - Completed greater than total (percentage capped at 100)
//   - Regions outside the known set
//   - Date cells that are not recognizable dates
//
// ERROR HANDLING:
//   - Issues are collected, not returned one at a time
//   - Each issue carries the sheet row, column and raw value
//   - Errors mark data that would be lost on import; warnings mark data that
//     would be imported but probably not as intended
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/delivery-reconciler/internal/converter"
	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleRequired         = "required"
	RuleNumeric          = "numeric"
	RuleNonNegative      = "non_negative"
	RuleCompletedInTotal = "completed_le_total"
	RuleKnownRegion      = "known_region"
	RuleDate             = "date"
)

// =============================================================================
// VALIDATION ISSUES
// =============================================================================

// Issue is a single problem found in a row.
type Issue struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Row is StartRow plus the row's position among decoded rows. Blank
	// rows are dropped by the decoders, so it can trail the sheet row.
	Row int

	// Column is the column letter the value came from.
	Column string

	// Field is the record field the column feeds.
	Field string

	// Value is the raw cell text.
	Value string

	// Rule is the rule that was violated.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (i *Issue) Error() string {
	return fmt.Sprintf("[%s] row %d, column %s (%s): %s (value: '%s')",
		strings.ToUpper(i.Severity), i.Row, i.Column, i.Field, i.Message, i.Value)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the results of validation.
type Result struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Issues lists errors and warnings in row order.
	Issues []*Issue

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// RowsChecked is the number of rows examined.
	RowsChecked int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options contains options for validation.
type Options struct {
	// Columns is the column table. Zero fields use the defaults.
	Columns converter.Columns

	// Regions is the known region set. Empty disables the region check.
	Regions types.RegionSet

	// StartRow is the sheet row of the first decoded row.
	// Default: 1
	StartRow int

	// TreatWarningsAsErrors makes any warning invalidate the result.
	TreatWarningsAsErrors bool
}

// Validator checks imported rows.
type Validator struct {
	options Options
	columns converter.Columns
}

// NewValidator creates a Validator.
func NewValidator(options Options) *Validator {
	if options.StartRow < 1 {
		options.StartRow = 1
	}
	return &Validator{
		options: options,
		columns: options.Columns.WithDefaults(),
	}
}

// CheckRows validates rows with the given options.
func CheckRows(rows []types.ImportedRow, options Options) *Result {
	return NewValidator(options).ValidateAll(rows)
}

// ValidateAll validates every row and returns the collected issues.
func (v *Validator) ValidateAll(rows []types.ImportedRow) *Result {
	result := &Result{
		IsValid:     true,
		Issues:      make([]*Issue, 0),
		RowsChecked: len(rows),
	}

	for i, row := range rows {
		for _, issue := range v.ValidateRow(row, v.options.StartRow+i) {
			result.Issues = append(result.Issues, issue)
			if issue.Severity == SeverityError {
				result.ErrorCount++
				result.IsValid = false
			} else {
				result.WarningCount++
				if v.options.TreatWarningsAsErrors {
					result.IsValid = false
				}
			}
		}
	}

	return result
}

// ValidateRow validates a single row. rowNumber is used for reporting only.
func (v *Validator) ValidateRow(row types.ImportedRow, rowNumber int) []*Issue {
	var issues []*Issue
	add := func(severity, column, field, rule, message string) {
		issues = append(issues, &Issue{
			Severity: severity,
			Row:      rowNumber,
			Column:   column,
			Field:    field,
			Value:    converter.ToText(converter.Cell(row, column)),
			Rule:     rule,
			Message:  message,
		})
	}
	cols := v.columns

	// A row without a driver is skipped; nothing else about it matters.
	if converter.ToText(converter.Cell(row, cols.Driver)) == "" {
		add(SeverityWarning, cols.Driver, "driver", RuleRequired, "row has no driver and will be skipped")
		return issues
	}

	countsValid := true
	for _, c := range []struct{ column, field string }{
		{cols.Total, "total"},
		{cols.Completed, "completed"},
	} {
		value := converter.Cell(row, c.column)
		text := converter.ToText(value)
		switch {
		case text == "":
			// Blank counts are zero.
		case !converter.IsNumber(value):
			add(SeverityError, c.column, c.field, RuleNumeric, "value is not a number and will be imported as 0")
			countsValid = false
		case converter.IsNegative(value):
			add(SeverityWarning, c.column, c.field, RuleNonNegative, "negative count will be imported as 0")
			countsValid = false
		}
	}

	if countsValid {
		total := converter.ToInt(converter.Cell(row, cols.Total))
		completed := converter.ToInt(converter.Cell(row, cols.Completed))
		if completed > total {
			add(SeverityWarning, cols.Completed, "completed", RuleCompletedInTotal,
				fmt.Sprintf("completed %d exceeds total %d, percentage is capped at 100", completed, total))
		}
	}

	if len(v.options.Regions) > 0 {
		region := converter.ToText(converter.Cell(row, cols.Region))
		if _, ok := v.options.Regions.Canonical(region); !ok {
			msg := fmt.Sprintf("region %q is not a known region", region)
			if region == "" {
				msg = "region is empty"
			}
			add(SeverityWarning, cols.Region, "region", RuleKnownRegion, msg)
		}
	}

	if date := converter.Cell(row, cols.Date); converter.ToText(date) != "" && !converter.IsDate(date) {
		add(SeverityWarning, cols.Date, "date", RuleDate, "value is not a recognizable date and will be kept as text")
	}

	return issues
}
