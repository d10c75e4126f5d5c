package packstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/edwinsyarief/packstore/internal/log"
)

// Config holds the settings NewFromConfig builds a Storage from.
type Config struct {
	InitialCapacity int        `json:"initial_capacity" yaml:"initial_capacity"`
	Log             log.Config `json:"log" yaml:"log"`
}

// DefaultConfig returns the settings New uses without options.
func DefaultConfig() Config {
	return Config{
		InitialCapacity: defaultInitialCapacity,
		Log:             log.DefaultConfig(),
	}
}

// Validate checks c for values NewFromConfig cannot use.
func (c Config) Validate() error {
	if c.InitialCapacity < 0 {
		return fmt.Errorf("%w: initial_capacity must not be negative, got %d", ErrInvalidConfig, c.InitialCapacity)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfigYAML reads a YAML config. Missing fields keep their defaults.
func LoadConfigYAML(r io.Reader) (Config, error) {
	c := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfigJSON reads a JSON config. Comments and trailing commas are
// accepted. Missing fields keep their defaults.
func LoadConfigJSON(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w: invalid JSONC: %w", ErrInvalidConfig, err)
	}
	c := DefaultConfig()
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfigFile reads a config file, choosing the format by extension:
// .yaml and .yml are YAML, anything else JSON with comments.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadConfigYAML(f)
	default:
		return LoadConfigJSON(f)
	}
}

// NewFromConfig validates c and builds a Storage with its logger.
func NewFromConfig(c Config) (*Storage, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	logger, err := log.New(c.Log)
	if err != nil {
		return nil, err
	}
	return New(WithLogger(logger), WithInitialCapacity(c.InitialCapacity)), nil
}
