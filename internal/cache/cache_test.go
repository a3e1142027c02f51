package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	// initial load should return empty DB and error
	db, err := Load(dir, "fp1")
	assert.Error(t, err)
	require.NotNil(t, db.Entries)
	db.Entries["a.txt"] = "deadbeef"
	require.NoError(t, Save(dir, db))

	_, err = os.Stat(filepath.Join(dir, ".shadowscancache.json"))
	require.NoError(t, err, "cache file not written")

	db2, err := Load(dir, "fp1")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", db2.Entries["a.txt"])

	db3, err := Load(dir, "fp2")
	require.NoError(t, err)
	assert.Empty(t, db3.Entries, "fingerprint change discards entries")
	assert.Equal(t, "fp2", db3.Fingerprint)
}

func TestSave_UnderGitDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, Save(dir, DB{Entries: map[string]string{"x": "y"}}))
	_, err := os.Stat(filepath.Join(dir, ".git", "shadowscancache.json"))
	assert.NoError(t, err)
}

func TestSave_NilEntries(t *testing.T) {
	assert.Error(t, Save(t.TempDir(), DB{}))
}

func TestHash(t *testing.T) {
	assert.Equal(t, "0000000000000000", Hash(nil))
	h := Hash([]byte("hello"))
	assert.Len(t, h, 16)
	assert.Equal(t, h, Hash([]byte("hello")))
	assert.NotEqual(t, h, Hash([]byte("hello!")))
	assert.NotEqual(t, Fingerprint("a", "bc"), Fingerprint("ab", "c"))
}

func TestIsCacheFile(t *testing.T) {
	assert.True(t, IsCacheFile(".shadowscancache.json"))
	assert.True(t, IsCacheFile("sub/.shadowscancache.json"))
	assert.False(t, IsCacheFile("shadowscancache.json.bak"))
}
