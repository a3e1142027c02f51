package redact

import (
	"regexp"
	"strings"
)

// Kind selects how a matched value is masked for display.
type Kind int

const (
	// None returns the input unchanged. Used for values that are shown as-is
	// (emails, phone numbers, IP addresses, URLs).
	None Kind = iota
	// Card keeps the last 4 digits of each card-shaped number.
	Card
	// SSN keeps the last 4 digits of each SSN-shaped number.
	SSN
	// Secret keeps the first and last 2 characters of each token.
	Secret
)

func (k Kind) String() string {
	switch k {
	case Card:
		return "card"
	case SSN:
		return "ssn"
	case Secret:
		return "secret"
	}
	return "none"
}

// maxStars caps the run of '*' used for secrets; the true length is not preserved.
const maxStars = 10

var (
	reCardRun = regexp.MustCompile(`\b\d(?:[ -]?\d){11,18}\b`)
	reSSNRun  = regexp.MustCompile(`\b\d{3}[- \t]?\d{2}[- \t]?\d{4}\b`)
	// tokens shorter than 7 characters (2 + 3 + 2) are left alone
	reToken = regexp.MustCompile(`[A-Za-z0-9_-]{7,}`)
)

// Mask returns a display-safe rendition of s. It is applied independently to a
// matched value and to its surrounding context.
func Mask(s string, k Kind) string {
	switch k {
	case Card:
		return reCardRun.ReplaceAllStringFunc(s, keepLastDigits)
	case SSN:
		return reSSNRun.ReplaceAllStringFunc(s, keepLastDigits)
	case Secret:
		return reToken.ReplaceAllStringFunc(s, maskToken)
	}
	return s
}

// keepLastDigits replaces every digit except the final four with '*'. Separators
// are kept in place.
func keepLastDigits(s string) string {
	total := 0
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			total++
		}
	}
	b := []byte(s)
	seen := 0
	for i := range b {
		if !isDigit(b[i]) {
			continue
		}
		if seen < total-4 {
			b[i] = '*'
		}
		seen++
	}
	return string(b)
}

func maskToken(tok string) string {
	middle := len(tok) - 4
	if middle > maxStars {
		middle = maxStars
	}
	return tok[:2] + strings.Repeat("*", middle) + tok[len(tok)-2:]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
