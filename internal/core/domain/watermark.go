package domain

import (
	"fmt"
	"strings"
	"time"
)

// WatermarkLayout is the on-disk and upstream date format (YYYY/MM/DD).
const WatermarkLayout = "2006/01/02"

// TruncateToDate returns midnight UTC of t's calendar date.
func TruncateToDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatWatermark renders a watermark date.
func FormatWatermark(t time.Time) string {
	return t.UTC().Format(WatermarkLayout)
}

// ParseWatermark parses YYYY/MM/DD, also accepting YYYY-MM-DD.
func ParseWatermark(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{WatermarkLayout, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: watermark %q is not a YYYY/MM/DD date", ErrInvalidInput, s)
}
