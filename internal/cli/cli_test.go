package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/affectively-ai/foldline/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	if dir == "" {
		t.Error("cacheDir() returned empty string")
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "foldline")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", "foldline") {
		t.Errorf("cacheDir() = %q, should honor XDG_CACHE_HOME", dir)
	}
}

func TestRootCommand(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != "foldline" {
		t.Errorf("Use = %q", root.Use)
	}

	want := []string{"solve", "manifest", "serve", "preview", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestSolveCommandRuns(t *testing.T) {
	path := writeFixture(t, sampleFixture)
	out := filepath.Join(t.TempDir(), "result.json")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"solve", path, "-o", out})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	if err := root.Execute(); err != nil {
		t.Fatalf("solve: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "\"decisions\"") {
		t.Error("output should contain a decision set")
	}
}

func TestManifestCommandRuns(t *testing.T) {
	path := writeFixture(t, sampleFixture)
	out := filepath.Join(t.TempDir(), "m.json")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"manifest", path, "-o", out})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	if err := root.Execute(); err != nil {
		t.Fatalf("manifest: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	for _, want := range []string{"{base}/values?block=", "{base}/context?doc=doc-1"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("manifest missing %q", want)
		}
	}
}

func TestBuildCacheBackends(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(io.Discard, LogInfo)
	ctx := context.Background()

	// --no-cache wins over any configured backend.
	cc, err := c.buildCache(ctx, config.CacheConfig{Backend: "file"}, true)
	if err != nil {
		t.Fatalf("buildCache no-cache: %v", err)
	}
	_ = cc.Set(ctx, "k", []byte("v"), 0)
	if _, hit, _ := cc.Get(ctx, "k"); hit {
		t.Error("--no-cache must disable storage")
	}

	// File backend with no dir lands in the local cache directory.
	cc, err = c.buildCache(ctx, config.CacheConfig{Backend: "file"}, false)
	if err != nil {
		t.Fatalf("buildCache file: %v", err)
	}
	defer cc.Close()
	if err := cc.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := cc.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("file cache round trip: hit=%v data=%q err=%v", hit, data, err)
	}
	dir, _ := cacheDir()
	if entries, err := os.ReadDir(dir); err != nil || len(entries) == 0 {
		t.Errorf("file cache should populate %s: entries=%d err=%v", dir, len(entries), err)
	}

	// Explicit dir takes precedence over the default location.
	explicit := t.TempDir()
	cc, err = c.buildCache(ctx, config.CacheConfig{Backend: "file", Dir: explicit}, false)
	if err != nil {
		t.Fatalf("buildCache explicit dir: %v", err)
	}
	defer cc.Close()
	if err := cc.Set(ctx, "k2", []byte("v2"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if entries, err := os.ReadDir(explicit); err != nil || len(entries) == 0 {
		t.Errorf("explicit dir should be used: entries=%d err=%v", len(entries), err)
	}

	if _, err := c.buildCache(ctx, config.CacheConfig{Backend: "bogus"}, false); err == nil {
		t.Error("unknown backend must error")
	}
}
