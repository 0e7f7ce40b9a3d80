package camera

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoImages        = errors.New("no images configured")
	ErrInvalidInterval = errors.New("frame interval must be positive")
	ErrInvalidBoundary = errors.New("invalid multipart boundary")
	ErrInvalidAddr     = errors.New("invalid listen address")
)

// Config is the immutable camera configuration shared by every stream.
type Config struct {
	Images      []string      `yaml:"images"`
	Addr        string        `yaml:"addr"`
	Interval    time.Duration `yaml:"interval"`
	Boundary    string        `yaml:"boundary"`
	MetricsAddr string        `yaml:"metrics_addr"`
	PprofAddr   string        `yaml:"pprof_addr"`
	Probe       bool          `yaml:"probe"`
	LogLevel    string        `yaml:"log_level"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Addr:     "localhost:8080",
		Interval: time.Second,
		Boundary: "foo",
		Probe:    true,
		LogLevel: "info",
	}
}

// LoadFile decodes a YAML config file on top of cfg. Keys missing from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations that cannot serve a stream.
func (c Config) Validate() error {
	if len(c.Images) == 0 {
		return ErrNoImages
	}
	for i, img := range c.Images {
		if strings.TrimSpace(img) == "" {
			return fmt.Errorf("image %d: empty path", i)
		}
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, c.Interval)
	}
	if err := validateBoundary(c.Boundary); err != nil {
		return err
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidAddr, c.Addr, err)
	}
	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidAddr, c.MetricsAddr, err)
		}
	}
	return nil
}

// validateBoundary applies the RFC 2046 boundary grammar.
func validateBoundary(b string) error {
	if len(b) < 1 || len(b) > 70 {
		return fmt.Errorf("%w: length %d", ErrInvalidBoundary, len(b))
	}
	if strings.HasSuffix(b, " ") {
		return fmt.Errorf("%w: trailing space", ErrInvalidBoundary)
	}
	for _, r := range b {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		case strings.ContainsRune("'()+_,-./:=? ", r):
		default:
			return fmt.Errorf("%w: character %q", ErrInvalidBoundary, r)
		}
	}
	return nil
}
