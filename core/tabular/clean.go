package tabular

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bulk-manager/core/utils"
)

// ErrInvalidNumber is returned by ToNumeric when a cell is not a number.
var ErrInvalidNumber = errors.New("invalid number")

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// dateLayouts are tried in order; month-first wins for ambiguous slashed dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"Mon Jan 2 2006",
}

// IsBlank reports whether v carries no usable value.
func IsBlank(v any) bool {
	var s string
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s = t
	case *string:
		if t == nil {
			return true
		}
		s = *t
	default:
		s = utils.ToString(t)
	}

	switch strings.TrimSpace(s) {
	case "", "-", "'-":
		return true
	}
	return false
}

// ToNumeric parses a numeric cell, ignoring surrounding space and percent signs.
func ToNumeric(v string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(v), "%", ""))
	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, v)
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, v)
	}
	return f, nil
}

// ToIsoDate normalizes v to YYYY-MM-DD, returning v unchanged when it cannot be parsed.
func ToIsoDate(v string) string {
	trimmed := strings.TrimSpace(v)
	if isoDatePattern.MatchString(trimmed) {
		return trimmed
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return v
}
