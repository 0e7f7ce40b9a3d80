package camera

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Addr != "localhost:8080" {
		t.Fatalf("default addr = %q", cfg.Addr)
	}
	if cfg.Interval != time.Second {
		t.Fatalf("default interval = %s", cfg.Interval)
	}
	if cfg.Boundary != "foo" {
		t.Fatalf("default boundary = %q", cfg.Boundary)
	}
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Images = []string{"a.jpeg"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"no images", func(c *Config) { c.Images = nil }, ErrNoImages},
		{"zero interval", func(c *Config) { c.Interval = 0 }, ErrInvalidInterval},
		{"empty boundary", func(c *Config) { c.Boundary = "" }, ErrInvalidBoundary},
		{"boundary with newline", func(c *Config) { c.Boundary = "a\r\nb" }, ErrInvalidBoundary},
		{"addr without port", func(c *Config) { c.Addr = "localhost" }, ErrInvalidAddr},
		{"bad metrics addr", func(c *Config) { c.MetricsAddr = "9090" }, ErrInvalidAddr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			cfg.Images = []string{"a.jpeg"}
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camera.yaml")
	content := "images:\n  - a.jpeg\n  - b.png\naddr: 0.0.0.0:9000\ninterval: 250ms\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := DefaultConfig()
	if err := LoadFile(path, &cfg); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfg.Images) != 2 || cfg.Images[0] != "a.jpeg" || cfg.Images[1] != "b.png" {
		t.Fatalf("images = %v", cfg.Images)
	}
	if cfg.Addr != "0.0.0.0:9000" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.Interval != 250*time.Millisecond {
		t.Fatalf("interval = %s", cfg.Interval)
	}
	if cfg.Boundary != "foo" {
		t.Fatalf("boundary overwritten: %q", cfg.Boundary)
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camera.yaml")
	if err := os.WriteFile(path, []byte("imgs: [a.jpeg]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg := DefaultConfig()
	if err := LoadFile(path, &cfg); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LoadFile missing = %v, want ErrNotExist", err)
	}
}
