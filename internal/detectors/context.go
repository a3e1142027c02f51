package detectors

import (
	"regexp"

	"github.com/redactyl/shadowscan/internal/redact"
	"github.com/redactyl/shadowscan/internal/types"
)

// ContextRule only fires when one of its keywords appears near the match.
type ContextRule struct {
	Name        string
	Keywords    []string // lower-case
	Regex       *regexp.Regexp
	Score       float64
	Category    string
	Description string
	Mask        redact.Kind
}

var contextRules = []ContextRule{
	{
		Name:        "SSN_CONTEXT",
		Keywords:    []string{"ssn", "social security", "social security number"},
		Regex:       regexp.MustCompile(`\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`),
		Score:       0.95,
		Category:    types.CatPII,
		Description: "Social Security Number (with context)",
		Mask:        redact.SSN,
	},
	{
		Name:        "PASSWORD_CONTEXT",
		Keywords:    []string{"password", "passwd", "pwd", "secret", "credentials"},
		Regex:       regexp.MustCompile(`['"][^'"]{8,}['"]|[^;,\s]{8,}`),
		Score:       0.8,
		Category:    types.CatCredentials,
		Description: "Password (with context)",
		Mask:        redact.Secret,
	},
	{
		Name:        "CREDIT_CARD_CONTEXT",
		Keywords:    []string{"credit card", "cc", "credit card number", "card number", "payment card"},
		Regex:       regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),
		Score:       0.9,
		Category:    types.CatFinancial,
		Description: "Credit Card Number (with context)",
		Mask:        redact.Card,
	},
	{
		Name:        "API_KEY_CONTEXT",
		Keywords:    []string{"api key", "apikey", "api_key", "client_secret", "client secret", "app secret"},
		Regex:       regexp.MustCompile(`['"][A-Za-z0-9_-]{16,64}['"]|[A-Za-z0-9_-]{16,64}`),
		Score:       0.85,
		Category:    types.CatCredentials,
		Description: "API Key (with context)",
		Mask:        redact.Secret,
	},
}

// ContextRules returns a copy of the context rule registry in declaration order.
func ContextRules() []ContextRule {
	return append([]ContextRule(nil), contextRules...)
}
