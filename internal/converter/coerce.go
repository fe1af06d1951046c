// =============================================================================
// Delivery Reconciler - Cell Coercion
// =============================================================================
//
// Raw cell values have no fixed type. Depending on the decoder a count may
// arrive as "8", 8, 8.0 or "8,0", and a date as a time.Time, an Excel serial
// number or text. The functions in this file are total: every input maps to
// a well-defined output and nothing here returns an error.
//
// =============================================================================

package converter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayout is the canonical form of DeliveryRecord.Date.
const dateLayout = "2006-01-02"

// textDateLayouts are tried in order when a date cell holds text.
var textDateLayouts = []string{
	dateLayout,
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
}

// Excel serials for 1900-01-01 through 9999-12-31.
const (
	minDateSerial = 1
	maxDateSerial = 2958465
)

// ToInt coerces a cell value to a non-negative integer.
//
// COERCION RULES:
//   - integers are used as-is
//   - floats are truncated toward zero
//   - text is trimmed and parsed as a number; a lone decimal comma is accepted
//   - negative, NaN, infinite, boolean, missing and non-numeric values give 0
func ToInt(value any) int {
	f, ok := toFloat(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// IsNumber reports whether value holds a number or numeric-looking text.
func IsNumber(value any) bool {
	f, ok := toFloat(value)
	return ok && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsNegative reports whether value holds a number below zero.
func IsNegative(value any) bool {
	f, ok := toFloat(value)
	return ok && f < 0
}

// toFloat extracts a float from numeric values and numeric-looking text.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		return parseNumber(v)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ToText coerces a cell value to trimmed text. Numbers are formatted without
// a trailing ".0"; missing values give "".
func ToText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(dateLayout)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// ToDate coerces a date cell to YYYY-MM-DD. Excel serial numbers are
// converted with the 1900 date system. Text that matches no known layout is
// kept as trimmed text so it still takes part in record identity.
func ToDate(value any) string {
	if t, ok := value.(time.Time); ok {
		return t.Format(dateLayout)
	}

	if serial, ok := toFloat(value); ok {
		if serial >= minDateSerial && serial <= maxDateSerial {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t.Format(dateLayout)
			}
		}
		return ToText(value)
	}

	text := ToText(value)
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(dateLayout)
		}
	}
	return text
}

// IsDate reports whether ToDate maps value to a YYYY-MM-DD date.
func IsDate(value any) bool {
	_, err := time.Parse(dateLayout, ToDate(value))
	return err == nil
}
