package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreMatch(t *testing.T) {
	dir := t.TempDir()
	ig := filepath.Join(dir, FileName)
	content := "node_modules/\n*.pem\n# comment\n\nsecret.env\n/fixtures/*.json\n!fixtures/keep.json\n"
	require.NoError(t, os.WriteFile(ig, []byte(content), 0o644))

	m, err := Load(ig)
	require.NoError(t, err)
	cases := map[string]bool{
		"node_modules/pkg/index.js": true,
		"web/node_modules/x.js":     true,
		"certs/key.pem":             true,
		"secret.env":                true,
		"conf/secret.env":           true,
		"fixtures/users.json":       true,
		"fixtures/keep.json":        false,
		"nested/fixtures/a.json":    false,
		"src/app.go":                false,
	}
	for p, want := range cases {
		assert.Equal(t, want, m.Match(p), p)
	}
}

func TestLoad_Missing(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.False(t, m.Match("anything.txt"))
}

func TestAppend_IdempotentAndCreates(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, FileName)

	require.NoError(t, Append(dir, "dist/"))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "dist/\n", string(b))

	require.NoError(t, Append(dir, "dist/"))
	require.NoError(t, Append(dir, "*.pem"))
	b, _ = os.ReadFile(p)
	assert.Equal(t, "dist/\n*.pem\n", string(b))

	assert.Error(t, Append(dir, "  "))
}

func TestAppend_AddsMissingNewline(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(p, []byte("build/"), 0o644))

	require.NoError(t, Append(dir, "vendor/"))
	b, _ := os.ReadFile(p)
	assert.Equal(t, "build/\nvendor/\n", string(b))

	m, err := Load(p)
	require.NoError(t, err)
	assert.True(t, m.Match("vendor/x.go"))
}
