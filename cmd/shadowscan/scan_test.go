package shadowscan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/redactyl/shadowscan/internal/engine"
	"github.com/redactyl/shadowscan/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar_DoneDrainsTicks(t *testing.T) {
	var buf bytes.Buffer
	tick, done := progressBar(&buf, 3)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tick()
		}()
	}
	wg.Wait()
	done()
	done()

	out := buf.String()
	assert.Contains(t, out, "\r[3/3] 100%")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestScanPaths_SortsAcrossArguments(t *testing.T) {
	base := t.TempDir()
	zdir := filepath.Join(base, "z")
	adir := filepath.Join(base, "a")
	require.NoError(t, os.MkdirAll(zdir, 0o755))
	require.NoError(t, os.MkdirAll(adir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(zdir, "b.txt"), []byte("contact bob@corp.io\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(adir, "a.txt"), []byte("contact alice@corp.io\n"), 0o644))
	single := filepath.Join(base, "c.txt")
	require.NoError(t, os.WriteFile(single, []byte("\n\ncarol@corp.io\n"), 0o644))

	cfg := engine.Config{Threads: 1, MaxBytes: 1 << 20, Logger: logging.Nop()}
	out, err := scanPaths(context.Background(), cfg, []string{single, zdir, adir})
	require.NoError(t, err)
	require.Len(t, out.findings, 3)
	assert.Equal(t, 3, out.filesScanned)

	var paths []string
	for _, f := range out.findings {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{filepath.ToSlash(single), "a.txt", "b.txt"}, paths)
}
