package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultExcludes(t *testing.T) {
	files := map[string]bool{
		"go.sum":                   true,
		"web/package-lock.json":    true,
		"cargo.lock":               true,
		"static/app.min.js":        true,
		"api/v1/service.pb.go":     true,
		"models/user.gen.ts":       true,
		"sub/.ds_store":            true,
		"src/app.js":               false,
		"db/seed.sql":              false,
		"docs/generation/notes.md": false,
	}
	for p, want := range files {
		assert.Equal(t, want, isDefaultFileExcluded(p), p)
	}
	assert.True(t, isDefaultDirExcluded("node_modules"))
	assert.False(t, isDefaultDirExcluded("src"))
}
