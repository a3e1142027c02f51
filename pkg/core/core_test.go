package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_Smoke(t *testing.T) {
	res, err := Scan(Request{Text: "mail alice@corp.io", FileType: "text"})
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "EMAIL", res.Findings[0].Type)
	assert.NotEmpty(t, Rules())
}

func TestRequestValidate(t *testing.T) {
	_, err := Scan(Request{Text: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Scan(Request{Text: "x", FileType: "js", Options: Options{ContextWindow: -1}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	res, err := Scan(Request{FileType: "js"})
	require.NoError(t, err)
	assert.Empty(t, res.Findings)
}

func TestScan_InputTooLarge(t *testing.T) {
	_, err := Scan(Request{Text: "0123456789", FileType: "text", Options: Options{MaxInputBytes: 4}})
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestMarshalRoundTrip(t *testing.T) {
	res, err := Scan(Request{Text: `password = "supersecret123"`, FileType: "text"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Findings)
	var buf bytes.Buffer
	require.NoError(t, MarshalResult(&buf, res))
	assert.NotContains(t, buf.String(), "supersecret123")

	back, err := UnmarshalResult(&buf)
	require.NoError(t, err)
	assert.Equal(t, res.Metadata.TotalPatterns, back.Metadata.TotalPatterns)
	assert.Equal(t, res.Findings[0].Value, back.Findings[0].Value)
}

func TestUnmarshalResult_EmptyCollections(t *testing.T) {
	res, err := UnmarshalResult(strings.NewReader(`{"metadata":{"totalPatterns":0}}`))
	require.NoError(t, err)
	assert.NotNil(t, res.Findings)
	assert.NotNil(t, res.Metadata.CategoryCounts)

	_, err = UnmarshalResult(strings.NewReader(`{`))
	assert.Error(t, err)
}
