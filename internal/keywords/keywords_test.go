package keywords

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	kws   map[string][]string
	err   error
}

func (c *countingSource) Keywords(_ context.Context, tenant string) ([]string, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.kws[tenant], nil
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"Falcon", "acme corp"}, Normalize([]string{" Falcon ", "", "falcon", "acme corp", "ACME CORP"}))
	assert.Equal(t, []string{}, Normalize(nil))
}

func TestStatic(t *testing.T) {
	got, err := Static{"a", "A", "b"}.Keywords(context.Background(), "any")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "kw.txt")
	require.NoError(t, os.WriteFile(p, []byte("# internal code names\nfalcon\n\n  osprey  \nFALCON\n"), 0o644))
	got, err := File{Path: p}.Keywords(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"falcon", "osprey"}, got)

	_, err = File{Path: filepath.Join(t.TempDir(), "missing")}.Keywords(context.Background(), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMulti(t *testing.T) {
	src := &countingSource{kws: map[string][]string{"acme": {"osprey", "falcon"}}}
	got, err := Multi{Static{"falcon"}, nil, src}.Keywords(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"falcon", "osprey"}, got)

	boom := errors.New("boom")
	_, err = Multi{Static{"x"}, &countingSource{err: boom}}.Keywords(context.Background(), "acme")
	assert.ErrorIs(t, err, boom)
}

func TestCached(t *testing.T) {
	src := &countingSource{kws: map[string][]string{"acme": {"falcon"}, "globex": {"hydra"}}}
	c := NewCached(src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.Keywords(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, []string{"falcon"}, got)
	}
	assert.Equal(t, 1, src.calls)

	got, err := c.Keywords(ctx, "globex")
	require.NoError(t, err)
	assert.Equal(t, []string{"hydra"}, got)
	assert.Equal(t, 2, src.calls)

	c.Invalidate("acme")
	_, err = c.Keywords(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 3, src.calls)
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	boom := errors.New("boom")
	src := &countingSource{err: boom}
	c := NewCached(src, time.Minute)

	_, err := c.Keywords(context.Background(), "acme")
	assert.ErrorIs(t, err, boom)
	_, err = c.Keywords(context.Background(), "acme")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, src.calls)
}

func TestCached_Expires(t *testing.T) {
	src := &countingSource{kws: map[string][]string{"acme": {"falcon"}}}
	c := NewCached(src, 20*time.Millisecond)
	_, err := c.Keywords(context.Background(), "acme")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = c.Keywords(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}
