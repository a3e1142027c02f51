package validate

import (
	"encoding/base64"
	"math"
	"strings"
)

// IsAlphabet returns true if all characters in s are in allowed set.
func IsAlphabet(s, allowed string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(allowed, rune(s[i])) {
			return false
		}
	}
	return true
}

// IsBase64URLNoPad reports whether s is valid base64url (no padding) for JWT segments.
func IsBase64URLNoPad(s string) bool {
	if s == "" {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}

// IsJWTStructure verifies 3 segments base64url-decodable for header and payload.
func IsJWTStructure(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return false
	}
	if !IsBase64URLNoPad(parts[0]) || !IsBase64URLNoPad(parts[1]) {
		return false
	}
	// signature can be empty or non-decodable; we do not require decoding
	return true
}

// Digits returns only the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// knownTestCards are published test numbers from card networks and payment sandboxes.
var knownTestCards = map[string]bool{
	"4111111111111111": true, // Visa
	"5555555555554444": true, // Mastercard
	"378282246310005":  true, // Amex
}

// IsKnownTestCard reports whether the digits of s equal a publicly known test card.
func IsKnownTestCard(s string) bool {
	return knownTestCards[Digits(s)]
}

// Luhn reports whether the digits of s pass the mod-10 checksum. Inputs with fewer
// than 13 or more than 19 digits are rejected.
func Luhn(s string) bool {
	d := Digits(s)
	if len(d) < 13 || len(d) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(d) - 1; i >= 0; i-- {
		n := int(d[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}

// Entropy returns the Shannon entropy of s in bits per character.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	count := map[rune]int{}
	n := 0
	for _, r := range s {
		count[r]++
		n++
	}
	H := 0.0
	for _, c := range count {
		p := float64(c) / float64(n)
		H += -p * math.Log2(p)
	}
	return H
}
