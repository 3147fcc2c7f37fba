package notify

import "strings"

const countryCodeBR = "55"

// NormalizePhone keeps the digits of raw, drops leading zeros and prefixes
// the Brazilian country code on bare 10 or 11 digit numbers.
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	digits = strings.TrimLeft(digits, "0")

	if len(digits) == 10 || len(digits) == 11 {
		digits = countryCodeBR + digits
	}

	return digits
}
