package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mermedit/pkg/cache"
	merrors "github.com/matzehuels/mermedit/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Layout.Direction != "" {
		t.Errorf("Layout.Direction = %q, want empty", cfg.Layout.Direction)
	}
}

func TestDecode(t *testing.T) {
	const doc = `
[server]
addr = "0.0.0.0:9000"
read_timeout = "5s"

[layout]
node_sep = 40
direction = "LR"

[render]
theme = "dark"
font_size = 16

[cache]
backend = "redis"
ttl = "1h"
prefix = "team-a"
redis = { addr = "localhost:6379", db = 2 }

[session]
ttl = "30m"
max_sessions = 10
`
	cfg := Default()
	if err := Decode(strings.NewReader(doc), &cfg); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want default 30s", cfg.Server.WriteTimeout)
	}
	if cfg.Layout.NodeSep != 40 || cfg.Layout.Direction != "LR" {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Layout.NodeWidth != 200 {
		t.Errorf("Layout.NodeWidth = %v, want default 200", cfg.Layout.NodeWidth)
	}
	if cfg.Render.Theme != "dark" || cfg.Render.FontSize != 16 {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Cache.Redis == nil || cfg.Cache.Redis.Addr != "localhost:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Cache.Redis = %+v", cfg.Cache.Redis)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Session.TTL != 30*time.Minute || cfg.Session.MaxSessions != 10 {
		t.Errorf("Session = %+v", cfg.Session)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"syntax", "[server\naddr = 1"},
		{"unknown key", "[server]\nport = 8080"},
		{"bad theme", "[render]\ntheme = \"neon\""},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"redis without addr", "[cache]\nbackend = \"redis\""},
		{"negative sep", "[layout]\nnode_sep = -1"},
		{"bad addr", "[server]\naddr = \"localhost\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Decode(strings.NewReader(tt.doc), &cfg)
			if err == nil {
				t.Fatal("Decode() error = nil, want error")
			}
			if !merrors.Is(err, merrors.ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want INVALID_CONFIG", merrors.GetCode(err))
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("[render]\ntheme = \"forest\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, used, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if used != path {
		t.Errorf("Load() path = %q, want %q", used, path)
	}
	if cfg.Render.Theme != "forest" {
		t.Errorf("Render.Theme = %q, want forest", cfg.Render.Theme)
	}

	if _, _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Load() of explicit missing file should fail")
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, used, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if used != "" {
		t.Errorf("Load(\"\") path = %q, want empty", used)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadFromConfigDir(t *testing.T) {
	t.Chdir(t.TempDir())
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	dir := filepath.Join(home, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[session]\nmax_sessions = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, used, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if used != filepath.Join(dir, FileName) {
		t.Errorf("Load(\"\") path = %q", used)
	}
	if cfg.Session.MaxSessions != 3 {
		t.Errorf("Session.MaxSessions = %d, want 3", cfg.Session.MaxSessions)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")

	if dir, _ := CacheDir(); dir != "/tmp/xdg-cache/mermedit" {
		t.Errorf("CacheDir() = %q", dir)
	}
	if dir, _ := ConfigDir(); dir != "/tmp/xdg-config/mermedit" {
		t.Errorf("ConfigDir() = %q", dir)
	}
}

func TestCacheOpen(t *testing.T) {
	c, err := Cache{Backend: BackendNone}.Open(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("none backend = %T, want cache.NullCache", c)
	}

	dir := t.TempDir()
	c, err = Cache{Backend: BackendFile, Dir: dir}.Open(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := c.(*cache.FileCache)
	if !ok {
		t.Fatalf("file backend = %T, want *cache.FileCache", c)
	}
	if fc.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", fc.Dir(), dir)
	}
}

func TestCacheKeyer(t *testing.T) {
	plain := Cache{}.Keyer().RenderKey("x", cache.RenderKeyOpts{})
	scoped := Cache{Prefix: "team-a"}.Keyer().RenderKey("x", cache.RenderKeyOpts{})
	if !strings.HasPrefix(plain, "render:") {
		t.Errorf("default key = %q", plain)
	}
	if !strings.HasPrefix(scoped, "team-a") {
		t.Errorf("scoped key = %q, want team-a prefix", scoped)
	}
}

func TestEncode(t *testing.T) {
	var sb strings.Builder
	cfg := Default()
	if err := cfg.Encode(&sb); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "[server]") || !strings.Contains(sb.String(), `addr = "127.0.0.1:8080"`) {
		t.Errorf("Encode() =\n%s", sb.String())
	}
}
