package validation

import (
	"strconv"
	"strings"
	"time"
)

// ValidExpiry checks an MM / YY pair against the month of now.
// Two-digit years map to 2000-2099; a card expiring in the current month is
// still valid. Unparseable input is rejected.
func ValidExpiry(month, year string, now time.Time) bool {
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return false
	}

	year = strings.TrimSpace(year)
	if len(year) == 0 || len(year) > 2 {
		return false
	}
	yy, err := strconv.Atoi(year)
	if err != nil || yy < 0 {
		return false
	}
	fullYear := 2000 + yy

	if fullYear < now.Year() {
		return false
	}
	if fullYear == now.Year() && time.Month(m) < now.Month() {
		return false
	}
	return true
}
