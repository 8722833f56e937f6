package platform

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteCache_SetGet(t *testing.T) {
	c, err := OpenSQLiteCache(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLiteCache() error = %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) reported a hit")
	}

	c.Set("k", "v", 0)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Errorf("Get(k) = %q, %v", v, ok)
	}

	c.Set("k", "w", 0)
	if v, _ := c.Get("k"); v != "w" {
		t.Errorf("upsert failed, got %q", v)
	}

	c.Set("neg", "", time.Minute)
	if v, ok := c.Get("neg"); !ok || v != "" {
		t.Errorf("Get(neg) = %q, %v, want empty hit", v, ok)
	}
}

func TestSQLiteCache_Expiry(t *testing.T) {
	c, err := OpenSQLiteCache(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLiteCache() error = %v", err)
	}
	defer c.Close()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Set("ttl", "v", time.Minute)
	c.Set("forever", "v", 0)

	clock = clock.Add(2 * time.Minute)
	if _, ok := c.Get("ttl"); ok {
		t.Error("entry not expired")
	}
	if _, ok := c.Get("forever"); !ok {
		t.Error("zero ttl must never expire")
	}
	// expired row is removed, not just hidden
	if _, ok := c.Get("ttl"); ok {
		t.Error("expired entry resurfaced")
	}
}

func TestSQLiteCache_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := OpenSQLiteCache(path)
	if err != nil {
		t.Fatalf("OpenSQLiteCache() error = %v", err)
	}
	c.Set("k", "v", 0)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	c2, err := OpenSQLiteCache(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer c2.Close()

	if v, ok := c2.Get("k"); !ok || v != "v" {
		t.Errorf("value did not survive reopen: %q, %v", v, ok)
	}
}
