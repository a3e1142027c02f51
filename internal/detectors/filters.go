package detectors

import (
	"regexp"

	v "github.com/redactyl/shadowscan/internal/validate"
)

// FilterOptions toggles the optional false-positive checks.
type FilterOptions struct {
	// StrictCards drops card numbers that fail the Luhn checksum.
	StrictCards bool
}

// minBlobEntropy is the Shannon entropy (bits per char) an encoded blob must exceed.
const minBlobEntropy = 3.5

var (
	reMeasurementWords = regexp.MustCompile(`(?i)\b(?:width|height|size|length|count|index|timestamp)\b`)
	reExampleWords     = regexp.MustCompile(`(?i)\b(?:test|example|sample|dummy|placeholder)\b`)
)

type fpFilter func(match, context string, opt FilterOptions) bool

var falsePositiveFilters = map[string]fpFilter{
	"BANK_ACCOUNT": func(_, context string, _ FilterOptions) bool {
		return reMeasurementWords.MatchString(context)
	},
	"API_KEY": func(_, context string, _ FilterOptions) bool {
		return reExampleWords.MatchString(context)
	},
	"CREDIT_CARD": func(match, _ string, opt FilterOptions) bool {
		if v.IsKnownTestCard(match) {
			return true
		}
		return opt.StrictCards && !v.Luhn(match)
	},
	"ENCODED_BLOB": func(match, _ string, _ FilterOptions) bool {
		return v.Entropy(match) <= minBlobEntropy
	},
	"JWT": func(match, _ string, _ FilterOptions) bool {
		return !v.IsJWTStructure(match)
	},
	"HASH_MD5":    allDigits,
	"HASH_SHA1":   allDigits,
	"HASH_SHA256": allDigits,
}

// allDigits drops hex-shaped matches with no letters; those are long numbers.
func allDigits(match, _ string, _ FilterOptions) bool {
	return v.IsAlphabet(match, "0123456789")
}

// FalsePositive reports whether a raw match of rule id should be dropped.
// Rules without a filter never drop.
func FalsePositive(id, match, context string, opt FilterOptions) bool {
	if f, ok := falsePositiveFilters[id]; ok {
		return f(match, context, opt)
	}
	return false
}
