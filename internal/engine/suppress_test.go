package engine

import (
	"testing"

	"github.com/redactyl/shadowscan/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestSuppressedLines(t *testing.T) {
	text := "a\n" +
		"b // shadowscan:ignore\n" +
		"# shadowscan:ignore-next-line\n" +
		"c\n" +
		"d\n" +
		"/* shadowscan:ignore-start */\n" +
		"e\n" +
		"/* shadowscan:ignore-end */\n" +
		"f"
	got := suppressedLines(text)
	assert.Equal(t, map[int]bool{2: true, 3: true, 4: true, 6: true, 7: true, 8: true}, got)
	assert.Nil(t, suppressedLines("nothing to see"))
}

func TestDropSuppressed(t *testing.T) {
	fs := []types.Finding{
		{Type: "EMAIL", Location: types.Location{Line: 1}},
		{Type: "SSN", Location: types.Location{Line: 2}},
	}
	got := dropSuppressed(fs, map[int]bool{2: true})
	assert.Len(t, got, 1)
	assert.Equal(t, "EMAIL", got[0].Type)
}
