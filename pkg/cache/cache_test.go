package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
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
		t.Errorf("Get() = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("Get(missing) hit")
	}

	if err := c.Set(ctx, "svg", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "svg")
	if err != nil || !hit {
		t.Fatalf("Get() = %v, %v; want hit", hit, err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("Get() = %q, want %q", data, "<svg/>")
	}

	if err := c.Delete(ctx, "svg"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "svg"); hit {
		t.Error("Get() hit after Delete")
	}
	if err := c.Delete(ctx, "svg"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestFileCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("v"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get() hit on expired entry")
	}
	if _, err := os.Stat(c.path("key")); !os.IsNotExist(err) {
		t.Error("expired entry was not removed")
	}
}

func TestFileCache_NoTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "key", []byte("v"), 0)
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Error("Get() miss for entry without TTL")
	}
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("key")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte("{not json"), 0o644)

	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v; want silent miss", hit, err)
	}
}

func TestFileCache_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "key", nil, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Set() error = %v, want context.Canceled", err)
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

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	text := "graph TD\n  A-->B"

	svg := k.RenderKey(text, RenderKeyOpts{Format: "svg"})
	png := k.RenderKey(text, RenderKeyOpts{Format: "png"})
	if svg == png {
		t.Error("different formats should produce different keys")
	}
	if svg != k.RenderKey(text, RenderKeyOpts{Format: "svg"}) {
		t.Error("RenderKey should be deterministic")
	}
	if !strings.HasPrefix(svg, "render:") {
		t.Errorf("RenderKey = %q, want render: prefix", svg)
	}

	l1 := k.LayoutKey("abc", LayoutKeyOpts{Direction: "TB"})
	l2 := k.LayoutKey("abc", LayoutKeyOpts{Direction: "LR"})
	if l1 == l2 {
		t.Error("different directions should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "mermedit:")
	plain := NewDefaultKeyer()

	got := scoped.RenderKey("x", RenderKeyOpts{})
	if want := "mermedit:" + plain.RenderKey("x", RenderKeyOpts{}); got != want {
		t.Errorf("RenderKey = %q, want %q", got, want)
	}
	if got := scoped.LayoutKey("h", LayoutKeyOpts{}); !strings.HasPrefix(got, "mermedit:layout:") {
		t.Errorf("LayoutKey = %q", got)
	}
}

func TestConnectWithRetry(t *testing.T) {
	defer func(d time.Duration) { backoff = d }(backoff)
	backoff = time.Millisecond

	fatal := errors.New("fatal")
	tests := []struct {
		name      string
		failFirst int   // calls that fail before success
		failErr   error // error returned by failing calls
		wantCalls int
		wantErr   error
	}{
		{"first attempt", 0, nil, 1, nil},
		{"recovers", 2, transient(ErrNetwork), 3, nil},
		{"permanent", 5, fatal, 1, fatal},
		{"exhausted", 5, transient(ErrNetwork), connectAttempts, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := connectWithRetry(context.Background(), func() error {
				calls++
				if calls <= tt.failFirst {
					return tt.failErr
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("connectWithRetry() made %d calls, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("connectWithRetry() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConnectWithRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := connectWithRetry(ctx, func() error { return transient(ErrNetwork) })
	if err != context.Canceled {
		t.Errorf("connectWithRetry() = %v, want context.Canceled", err)
	}
	if transient(nil) != nil {
		t.Error("transient(nil) != nil")
	}
}

// TestRedisCache runs against a live server when MERMEDIT_TEST_REDIS holds
// its address.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("MERMEDIT_TEST_REDIS")
	if addr == "" {
		t.Skip("MERMEDIT_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer c.Close()

	key := "mermedit:test:" + Hash([]byte(t.Name()))
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if data, hit, err := c.Get(ctx, key); err != nil || !hit || string(data) != "v" {
		t.Errorf("Get() = %q, %v, %v", data, hit, err)
	}
	_ = c.Delete(ctx, key)
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("Get() hit after Delete")
	}
}

func TestRedisCache_Unreachable(t *testing.T) {
	defer func(d time.Duration) { backoff = d }(backoff)
	backoff = time.Millisecond

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	c := NewRedisCacheFromClient(client)
	defer c.Close()

	if _, _, err := c.Get(context.Background(), "key"); err == nil {
		t.Error("Get() on unreachable server returned nil error")
	}
	_, err := NewRedisCache(context.Background(), RedisConfig{Addr: "127.0.0.1:1"})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("NewRedisCache() error = %v, want ErrNetwork", err)
	}
}
