package cache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	payload := []byte("layout bytes")
	if err := c.Set(ctx, "layout:abc", payload, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, hit, err := c.Get(ctx, "layout:abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit || !bytes.Equal(got, payload) {
		t.Errorf("Get = (%q, %v), want hit with payload", got, hit)
	}

	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:abc"); hit {
		t.Error("entry survived Delete")
	}
	// Deleting again is not an error.
	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	// Already-expired entry reads as a miss.
	if err := c.Set(ctx, "stale", []byte("x"), -time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "stale"); err != nil || hit {
		t.Errorf("expired entry: hit=%v err=%v, want miss", hit, err)
	}

	// Zero TTL never expires.
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero-TTL entry should not expire")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h3 := Hash([]byte("world")); h1 == h3 {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if k.TreeKey("/data") == k.TreeKey("/home") {
		t.Error("different roots should produce different tree keys")
	}

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Width: 1920, Height: 1080})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Width: 1280, Height: 1080})
	if lk1 == lk2 {
		t.Error("different LayoutKeyOpts should produce different keys")
	}

	ik1 := k.ImageKey("hash123", ImageKeyOpts{ColorMode: "category", Vibrancy: 1.2})
	ik2 := k.ImageKey("hash123", ImageKeyOpts{ColorMode: "hash", Vibrancy: 1.2})
	if ik1 == ik2 {
		t.Error("different ImageKeyOpts should produce different keys")
	}

	// Stage prefixes keep namespaces apart even for equal inputs.
	if k.LayoutKey("h", LayoutKeyOpts{}) == k.ImageKey("h", ImageKeyOpts{}) {
		t.Error("layout and image keys should not collide")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "session:42:")

	key := scoped.TreeKey("/data")
	want := "session:42:" + inner.TreeKey("/data")
	if key != want {
		t.Errorf("scoped key = %q, want %q", key, want)
	}

	// Nil inner falls back to the default keyer.
	fallback := NewScopedKeyer(nil, "p:")
	if fallback.TreeKey("/data") != "p:"+inner.TreeKey("/data") {
		t.Error("nil inner should use the default keyer")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Non-retryable errors fail immediately.
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return errors.New("fatal")
	})
	if err == nil || calls != 1 {
		t.Errorf("non-retryable: calls=%d err=%v", calls, err)
	}

	// Retryable errors retry until success.
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: calls=%d err=%v", calls, err)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error should not be retryable")
	}
	if !IsRetryable(Retryable(errors.New("transient"))) {
		t.Error("wrapped error should be retryable")
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}
