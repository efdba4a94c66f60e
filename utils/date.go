package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// FormatDate renders the calendar date of t in loc (local time when nil).
func FormatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateLayout)
}

// ParseAuditDate checks a YYYY-MM-DD string and returns it normalized.
func ParseAuditDate(s string) (string, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid audit date %q: %w", s, err)
	}
	return d.Format(DateLayout), nil
}
