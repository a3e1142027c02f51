// Package keywords supplies the caller-defined terms flagged by the custom
// keyword pass. Sources are per tenant and can be combined and cached.
package keywords

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Source returns the keywords configured for a tenant.
type Source interface {
	Keywords(ctx context.Context, tenant string) ([]string, error)
}

// Static is a fixed list shared by every tenant.
type Static []string

func (s Static) Keywords(context.Context, string) ([]string, error) {
	return Normalize(s), nil
}

// File reads one keyword per line. Blank lines and lines starting with '#'
// are skipped. The file is read on every call.
type File struct {
	Path string
}

func (f File) Keywords(context.Context, string) ([]string, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open keywords file: %w", err)
	}
	defer func() { _ = fh.Close() }()
	var out []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}
	return Normalize(out), nil
}

// Multi merges the keywords of several sources in order. The first error
// aborts the merge.
type Multi []Source

func (m Multi) Keywords(ctx context.Context, tenant string) ([]string, error) {
	var all []string
	for _, s := range m {
		if s == nil {
			continue
		}
		kws, err := s.Keywords(ctx, tenant)
		if err != nil {
			return nil, err
		}
		all = append(all, kws...)
	}
	return Normalize(all), nil
}

// Cached memoizes another source per tenant for a fixed TTL. Failed loads are
// not cached.
type Cached struct {
	src   Source
	cache *ttlcache.Cache[string, []string]
}

// NewCached wraps src with a per-tenant cache.
func NewCached(src Source, ttl time.Duration) *Cached {
	return &Cached{
		src: src,
		cache: ttlcache.New[string, []string](
			ttlcache.WithTTL[string, []string](ttl),
			ttlcache.WithDisableTouchOnHit[string, []string](),
		),
	}
}

func (c *Cached) Keywords(ctx context.Context, tenant string) ([]string, error) {
	var lerr error
	loader := ttlcache.LoaderFunc[string, []string](
		func(cc *ttlcache.Cache[string, []string], key string) *ttlcache.Item[string, []string] {
			var kws []string
			kws, lerr = c.src.Keywords(ctx, key)
			if lerr != nil {
				return nil
			}
			return cc.Set(key, kws, ttlcache.DefaultTTL)
		},
	)
	item := c.cache.Get(tenant, ttlcache.WithLoader[string, []string](loader))
	if lerr != nil {
		return nil, lerr
	}
	if item == nil {
		return nil, nil
	}
	return append([]string(nil), item.Value()...), nil
}

// Invalidate drops the cached keywords of tenant, for example after an edit.
func (c *Cached) Invalidate(tenant string) {
	c.cache.Delete(tenant)
}

// Normalize trims keywords and drops blanks and case-insensitive repeats,
// keeping the first spelling.
func Normalize(in []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}
