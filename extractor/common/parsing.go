package common

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var errEmptyAmount = errors.New("empty amount")

// NormalizeAmount parses an Italian formatted amount such as "1.234,56".
// Every artifact is first read as a dot, dots are then dropped as thousands
// separators and the comma becomes the decimal point.
func NormalizeAmount(text string, artifacts []string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(text)
	for _, a := range artifacts {
		if a != "" {
			clean = strings.ReplaceAll(clean, a, ".")
		}
	}
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	if clean == "" {
		return decimal.Zero, errEmptyAmount
	}

	return decimal.NewFromString(clean)
}

// ParseDate parses a calendar date using a layout. Dates carry no time of day so
// they are pinned to UTC.
func ParseDate(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, strings.TrimSpace(value), time.UTC)
}

// DateOnly drops the time of day, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
