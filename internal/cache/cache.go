// Package cache persists content hashes of scanned files so that incremental
// scans can skip files that have not changed since the last clean run.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"
)

const fileName = "shadowscancache.json"

type DB struct {
	// Fingerprint identifies the rule set and options the entries were produced
	// with. Entries from a different fingerprint are discarded on Load.
	Fingerprint string `json:"fingerprint"`
	// Path relative to scan root -> content hash (xxhash64 hex)
	Entries map[string]string `json:"entries"`
}

func defaultPath(root string) string {
	// Prefer storing cache under .git to avoid accidental commits
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, fileName)
	}
	return filepath.Join(root, "."+fileName)
}

// Load reads the cache for root. A missing or unreadable cache, or one written
// with another fingerprint, yields an empty DB carrying fingerprint.
func Load(root, fingerprint string) (DB, error) {
	empty := DB{Fingerprint: fingerprint, Entries: map[string]string{}}
	b, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return empty, err
	}
	var db DB
	if err := json.Unmarshal(b, &db); err != nil {
		return empty, err
	}
	if db.Fingerprint != fingerprint || db.Entries == nil {
		return empty, nil
	}
	return db, nil
}

func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(defaultPath(root), b, 0o644)
}

// Hash returns the 16-char hex xxhash64 of b.
func Hash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}

// Fingerprint hashes the given parts into a stable cache fingerprint.
func Fingerprint(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return Hash(d.Sum(nil))
}

// IsCacheFile reports whether rel names a cache file written outside .git.
func IsCacheFile(rel string) bool {
	return filepath.Base(rel) == "."+fileName
}
