// Package coerce turns loosely typed form and payload values into numbers.
// Anything that does not parse becomes zero; callers never see an error.
package coerce

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// groupedNumber matches a number whose integer part uses thousands
// separators in groups of exactly three digits.
var groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}([,'_]\d{3})+(\.\d+)?$`)

// stripGroups removes thousands separators. Anything else, such as a decimal
// comma ("2,5"), is returned unchanged and fails to parse.
func stripGroups(s string) string {
	if !groupedNumber.MatchString(s) {
		return s
	}
	return strings.NewReplacer(",", "", "'", "", "_", "").Replace(s)
}

// Float parses s as a decimal number. Thousands separators and surrounding
// whitespace are tolerated. Unparseable, NaN and infinite input yields 0.
func Float(s string) float64 {
	cleaned := stripGroups(strings.TrimSpace(s))
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return finite(v)
}

// Int parses s the same way as Float and truncates toward zero.
func Int(s string) int {
	return int(Float(s))
}

// Number converts an arbitrary decoded JSON value to float64.
// The second result is false when raw is not numeric at all.
func Number(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return finite(v), true
	case float32:
		return finite(float64(v)), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(stripGroups(trimmed), 64)
		if err != nil {
			return 0, false
		}
		return finite(f), true
	default:
		return 0, false
	}
}

// String converts a decoded JSON scalar to a trimmed string.
func String(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// Format renders v in its shortest exact decimal form.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Clamp bounds an integer score to [min, max].
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
