package detectors

import (
	"regexp"

	"github.com/redactyl/shadowscan/internal/redact"
	"github.com/redactyl/shadowscan/internal/types"
)

// PatternRule is a named regular expression with a base confidence score.
type PatternRule struct {
	Name        string
	Regex       *regexp.Regexp
	Score       float64
	Category    string
	Description string
	Mask        redact.Kind
}

var basePatterns = []PatternRule{
	{
		Name:        "EMAIL",
		Regex:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		Score:       0.8,
		Category:    types.CatPII,
		Description: "Email Address",
	},
	{
		Name:        "PHONE_US",
		Regex:       regexp.MustCompile(`\b(\+\d{1,2}\s?)?\d{3}[\s.-]?\d{3}[\s.-]?\d{4}\b`),
		Score:       0.7,
		Category:    types.CatPII,
		Description: "US Phone Number",
	},
	{
		Name:        "PHONE_INTERNATIONAL",
		Regex:       regexp.MustCompile(`\+(?:[0-9] ?){6,14}[0-9]\b`),
		Score:       0.7,
		Category:    types.CatPII,
		Description: "International Phone Number",
	},
	{
		Name:        "SSN",
		Regex:       regexp.MustCompile(`\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`),
		Score:       0.9,
		Category:    types.CatPII,
		Description: "Social Security Number",
		Mask:        redact.SSN,
	},
	{
		Name:        "DOB",
		Regex:       regexp.MustCompile(`\b(0[1-9]|1[0-2])[/-](0[1-9]|[12]\d|3[01])[/-](19|20)\d{2}\b`),
		Score:       0.7,
		Category:    types.CatPII,
		Description: "Date of Birth",
	},
	{
		Name:        "CREDIT_CARD",
		Regex:       regexp.MustCompile(`\b(?:4[0-9]{12}(?:[0-9]{3})?|5[1-5][0-9]{14}|3[47][0-9]{13}|3(?:0[0-5]|[68][0-9])[0-9]{11}|6(?:011|5[0-9]{2})[0-9]{12}|(?:2131|1800|35\d{3})\d{11})\b`),
		Score:       0.95,
		Category:    types.CatFinancial,
		Description: "Credit Card Number",
		Mask:        redact.Card,
	},
	{
		Name:        "BANK_ACCOUNT",
		Regex:       regexp.MustCompile(`\b[0-9]{8,17}\b`),
		Score:       0.5,
		Category:    types.CatFinancial,
		Description: "Potential Bank Account Number",
	},
	{
		Name:        "IBAN",
		Regex:       regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}[A-Z0-9]{4}[0-9]{7}(?:[A-Z0-9]?){0,16}\b`),
		Score:       0.85,
		Category:    types.CatFinancial,
		Description: "IBAN",
	},
	{
		Name:        "API_KEY",
		Regex:       regexp.MustCompile(`\b[A-Za-z0-9_-]{20,64}\b`),
		Score:       0.6,
		Category:    types.CatCredentials,
		Description: "Potential API Key",
		Mask:        redact.Secret,
	},
	{
		Name:        "AWS_KEY",
		Regex:       regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`),
		Score:       0.9,
		Category:    types.CatCredentials,
		Description: "AWS Access Key",
		Mask:        redact.Secret,
	},
	{
		Name:        "AWS_SECRET",
		Regex:       regexp.MustCompile(`\b[0-9a-zA-Z/+]{40}\b`),
		Score:       0.8,
		Category:    types.CatCredentials,
		Description: "Potential AWS Secret Key",
		Mask:        redact.Secret,
	},
	{
		Name:        "PRIVATE_KEY",
		Regex:       regexp.MustCompile(`-----BEGIN(?: RSA| DSA| EC| OPENSSH| PGP)? PRIVATE KEY(?: BLOCK)?-----`),
		Score:       0.95,
		Category:    types.CatCredentials,
		Description: "Private Key",
	},
	{
		Name:        "PASSWORD_FIELD",
		Regex:       regexp.MustCompile(`(?i)\b(?:password|passwd|pwd|secret|credentials?)\s*[=:]\s*['"][^'"]{3,}['"]|\b(?:password|passwd|pwd|secret|credentials?)\s*[=:]\s*[^;,\s]{3,}`),
		Score:       0.85,
		Category:    types.CatCredentials,
		Description: "Password in Code",
		Mask:        redact.Secret,
	},
	{
		Name:        "HEALTH_INSURANCE",
		Regex:       regexp.MustCompile(`\b[0-9]{3}[\s-]?[0-9]{2}[\s-]?[0-9]{4}\b`),
		Score:       0.6,
		Category:    types.CatHealthcare,
		Description: "Potential Health Insurance Number",
	},
	{
		Name:        "MEDICAL_RECORD",
		Regex:       regexp.MustCompile(`(?i)\bMRN:?\s*[0-9]{5,10}\b`),
		Score:       0.8,
		Category:    types.CatHealthcare,
		Description: "Medical Record Number",
	},
	{
		Name:        "IP_ADDRESS",
		Regex:       regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`),
		Score:       0.7,
		Category:    types.CatNetwork,
		Description: "IP Address",
	},
	{
		Name:        "INTERNAL_URL",
		Regex:       regexp.MustCompile(`https?://(?:localhost|127\.0\.0\.1|10\.\d{1,3}\.\d{1,3}\.\d{1,3}|172\.(?:1[6-9]|2\d|3[01])\.\d{1,3}\.\d{1,3}|192\.168\.\d{1,3}\.\d{1,3})(?::\d+)?(?:/[^\s"']*)?`),
		Score:       0.8,
		Category:    types.CatNetwork,
		Description: "Internal URL",
	},
}

// Extended rules are opt-in. They cover token and blob shapes that the base
// registry reports only through the broad API_KEY rule.
var extendedPatterns = []PatternRule{
	{
		Name:        "JWT",
		Regex:       regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		Score:       0.85,
		Category:    types.CatToken,
		Description: "JSON Web Token",
		Mask:        redact.Secret,
	},
	{
		Name:        "ENCODED_BLOB",
		Regex:       regexp.MustCompile(`[A-Za-z0-9+/]{40,}={0,2}`),
		Score:       0.75,
		Category:    types.CatEncoded,
		Description: "High-entropy Base64 Data",
		Mask:        redact.Secret,
	},
	{
		Name:        "HASH_MD5",
		Regex:       regexp.MustCompile(`\b[a-fA-F0-9]{32}\b`),
		Score:       0.6,
		Category:    types.CatHash,
		Description: "MD5 Hash",
	},
	{
		Name:        "HASH_SHA1",
		Regex:       regexp.MustCompile(`\b[a-fA-F0-9]{40}\b`),
		Score:       0.6,
		Category:    types.CatHash,
		Description: "SHA-1 Hash",
	},
	{
		Name:        "HASH_SHA256",
		Regex:       regexp.MustCompile(`\b[a-fA-F0-9]{64}\b`),
		Score:       0.6,
		Category:    types.CatHash,
		Description: "SHA-256 Hash",
	},
}

// Patterns returns the pattern registry in declaration order. With extended
// set, the opt-in rules follow the base rules. The returned slice is a copy.
func Patterns(extended bool) []PatternRule {
	n := len(basePatterns)
	if extended {
		n += len(extendedPatterns)
	}
	out := make([]PatternRule, 0, n)
	out = append(out, basePatterns...)
	if extended {
		out = append(out, extendedPatterns...)
	}
	return out
}
