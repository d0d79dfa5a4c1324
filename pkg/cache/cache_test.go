package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// implementations returns a fresh instance of every storing cache.
func implementations(t *testing.T) map[string]Cache {
	t.Helper()
	fc, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	return map[string]Cache{
		"file":   fc,
		"memory": NewMemoryCache(0),
		"scoped": Scoped(NewMemoryCache(0), "v1:"),
	}
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, c := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			defer c.Close()

			if _, hit, err := c.Get(ctx, "svg"); err != nil || hit {
				t.Fatalf("Get() on empty cache = %v, %v", hit, err)
			}
			if err := c.Set(ctx, "svg", []byte("<svg/>"), 0); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			data, hit, err := c.Get(ctx, "svg")
			if err != nil || !hit || string(data) != "<svg/>" {
				t.Fatalf("Get() = %q, %v, %v", data, hit, err)
			}
			if err := c.Delete(ctx, "svg"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, hit, _ := c.Get(ctx, "svg"); hit {
				t.Error("Get() after Delete should miss")
			}
			if err := c.Delete(ctx, "svg"); err != nil {
				t.Errorf("Delete() of a missing key error = %v", err)
			}
		})
	}
}

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	for name, c := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			if err := c.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			time.Sleep(20 * time.Millisecond)
			if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
				t.Errorf("Get() after expiry = %v, %v; want a miss", hit, err)
			}
		})
	}
}

func TestScopedIsolation(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryCache(0)
	a, b := Scoped(inner, "a:"), Scoped(inner, "b:")

	if err := a.Set(ctx, "k", []byte("from a"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := b.Get(ctx, "k"); hit {
		t.Error("scopes should not share keys")
	}
	if data, hit, _ := inner.Get(ctx, "a:k"); !hit || string(data) != "from a" {
		t.Errorf("inner Get(a:k) = %q, %v", data, hit)
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	clock := time.Unix(0, 0)
	c.now = func() time.Time { return clock }

	c.Set(ctx, "forever", []byte("1"), 0)
	clock = clock.Add(time.Second)
	c.Set(ctx, "short", []byte("2"), time.Minute)
	clock = clock.Add(time.Second)
	c.Set(ctx, "new", []byte("3"), 0)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("entry with the earliest expiry should be evicted first")
	}
	for _, k := range []string{"forever", "new"} {
		if _, hit, _ := c.Get(ctx, k); !hit {
			t.Errorf("%q should still be cached", k)
		}
	}

	// Overwriting an existing key never evicts.
	c.Set(ctx, "new", []byte("4"), 0)
	if c.Len() != 2 {
		t.Errorf("Len() after overwrite = %d, want 2", c.Len())
	}
}

func TestMemoryCacheCopiesData(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	buf := []byte("abc")
	c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'

	if data, _, _ := c.Get(ctx, "k"); string(data) != "abc" {
		t.Errorf("Get() = %q, want the value at Set time", data)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 5 {
		if err := c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil || n != 5 {
		t.Fatalf("Clear() = %d, %v; want 5", n, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir should be empty, has %d entries", len(entries))
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Errorf("Get() of corrupt entry = %v, %v; want a miss", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), 0); err == nil {
		t.Error("Set() with a canceled context should fail")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestArtifactKey(t *testing.T) {
	src := []byte("graph G {}")
	svg, dot := ArtifactKey("svg", src), ArtifactKey("dot", src)
	if svg == dot {
		t.Error("formats should produce different keys")
	}
	if !strings.HasPrefix(svg, "artifact:svg:") || !strings.HasSuffix(svg, Hash(src)) {
		t.Errorf("ArtifactKey() = %q", svg)
	}
}
