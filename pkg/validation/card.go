package validation

import (
	"strings"
)

const (
	// MinCardDigits and MaxCardDigits bound the length of a plausible PAN
	MinCardDigits = 12
	MaxCardDigits = 19
)

// Digits strips every character that is not an ASCII digit
func Digits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ValidCardNumber reports whether the digits of value form a 12-19 digit
// number that passes the Luhn checksum.
func ValidCardNumber(value string) bool {
	digits := Digits(value)
	if len(digits) < MinCardDigits || len(digits) > MaxCardDigits {
		return false
	}
	return luhn(digits)
}

// luhn expects a digits-only string
func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// FormatCardNumber groups the digits of value in blocks of four for display.
// Input beyond MaxCardDigits digits is dropped.
func FormatCardNumber(value string) string {
	digits := Digits(value)
	if len(digits) > MaxCardDigits {
		digits = digits[:MaxCardDigits]
	}

	groups := make([]string, 0, (len(digits)+3)/4)
	for i := 0; i < len(digits); i += 4 {
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		groups = append(groups, digits[i:end])
	}
	return strings.Join(groups, " ")
}

// ValidCVV accepts 3 or 4 digits once separators are stripped
func ValidCVV(value string) bool {
	n := len(Digits(value))
	return n == 3 || n == 4
}
