package redact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind Kind
		want string
	}{
		{"card plain", "4532015112830366", Card, "************0366"},
		{"card separators", "4532-0151-1283-0366", Card, "****-****-****-0366"},
		{"card amex", "371449635398431", Card, "***********8431"},
		{"card in context", "pay 4532 0151 1283 0366 now", Card, "pay **** **** **** 0366 now"},
		{"ssn dashed", "123-45-6789", SSN, "***-**-6789"},
		{"ssn in context", "ssn: 123456789;", SSN, "ssn: *****6789;"},
		{"secret short middle", "abcdefg", Secret, "ab***fg"},
		{"secret capped", "supersecret123", Secret, "su**********23"},
		{"secret very long", strings.Repeat("x", 60), Secret, "xx**********xx"},
		{"secret keeps short words", `pwd = "abc"`, Secret, `pwd = "abc"`},
		{"none passthrough", "user@example.com", None, "user@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Mask(tt.in, tt.kind))
		})
	}
}

func TestMask_SecretNeverLeaksToken(t *testing.T) {
	in := `password = "supersecret123"`
	out := Mask(in, Secret)
	assert.NotContains(t, out, "supersecret123")
	assert.Equal(t, `pa****rd = "su**********23"`, out)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "card", Card.String())
	assert.Equal(t, "none", None.String())
}
