package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/affectively-ai/aeon-nav/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "aeon.json"

	// DefaultPort is the default diagnostics server port.
	DefaultPort = 4600

	// DefaultHost is the default diagnostics server host.
	DefaultHost = "localhost"

	// DefaultManifest is the default route manifest path.
	DefaultManifest = "routes.json"
)

// Config represents the complete aeon.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Manifest is the path to the route manifest, relative to the config
	// file's directory unless absolute.
	Manifest string `json:"manifest,omitempty"`

	// Cache contains session and skeleton cache settings.
	Cache CacheConfig `json:"cache,omitempty"`

	// Prediction contains prediction model settings.
	Prediction PredictionConfig `json:"prediction,omitempty"`

	// Speculation contains speculative-loading settings.
	Speculation SpeculationConfig `json:"speculation,omitempty"`

	// Serve contains diagnostics server settings.
	Serve ServeConfig `json:"serve,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// CacheConfig contains session and skeleton cache settings.
type CacheConfig struct {
	// MaxSessions bounds the session cache entry count.
	MaxSessions int `json:"maxSessions,omitempty"`

	// SessionTTL is how long a cached session stays fresh (e.g. "5m").
	SessionTTL string `json:"sessionTtl,omitempty"`

	// MaxSkeletons bounds the skeleton cache entry count.
	MaxSkeletons int `json:"maxSkeletons,omitempty"`

	// SkeletonTTL is how long a cached skeleton stays fresh (e.g. "30m").
	SkeletonTTL string `json:"skeletonTtl,omitempty"`
}

// PredictionConfig contains prediction model settings.
type PredictionConfig struct {
	// Window is how many trailing history entries feed the model.
	Window int `json:"window,omitempty"`

	// PrefetchThreshold is the minimum predicted probability for an
	// automatic prefetch, in (0, 1).
	PrefetchThreshold float64 `json:"prefetchThreshold,omitempty"`

	// PrefetchFanout bounds automatic prefetches per navigation.
	PrefetchFanout int `json:"prefetchFanout,omitempty"`
}

// SpeculationConfig contains speculative-loading settings.
type SpeculationConfig struct {
	// MaxPrefetch bounds the prefetched path set.
	MaxPrefetch int `json:"maxPrefetch,omitempty"`

	// MaxPrerender bounds the prerendered path set.
	MaxPrerender int `json:"maxPrerender,omitempty"`

	// HoverDelay is how long a pointer must rest on a link before the
	// hover intent fires (e.g. "100ms").
	HoverDelay string `json:"hoverDelay,omitempty"`
}

// ServeConfig contains diagnostics server settings.
type ServeConfig struct {
	// Port is the port to bind the diagnostics server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Manifest: DefaultManifest,
		Cache: CacheConfig{
			MaxSessions:  50,
			SessionTTL:   "5m",
			MaxSkeletons: 100,
			SkeletonTTL:  "30m",
		},
		Prediction: PredictionConfig{
			Window:            50,
			PrefetchThreshold: 0.3,
			PrefetchFanout:    3,
		},
		Speculation: SpeculationConfig{
			MaxPrefetch:  10,
			MaxPrerender: 2,
			HoverDelay:   "100ms",
		},
		Serve: ServeConfig{
			Port: DefaultPort,
			Host: DefaultHost,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// aeon.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. A missing
// file is an error; callers that accept defaults should call New instead.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithDetail("no %s found at %s", ConfigFileName, path).
				WithSuggestion("Create " + ConfigFileName + " or pass --config with its location")
		}
		return nil, errors.New("C001").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("C001").
			WithDetail("failed to parse %s: %v", ConfigFileName, err).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("C001").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C001").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for zero fields.
func (c *Config) applyDefaults() {
	def := New()
	if c.Manifest == "" {
		c.Manifest = def.Manifest
	}
	if c.Cache.MaxSessions == 0 {
		c.Cache.MaxSessions = def.Cache.MaxSessions
	}
	if c.Cache.SessionTTL == "" {
		c.Cache.SessionTTL = def.Cache.SessionTTL
	}
	if c.Cache.MaxSkeletons == 0 {
		c.Cache.MaxSkeletons = def.Cache.MaxSkeletons
	}
	if c.Cache.SkeletonTTL == "" {
		c.Cache.SkeletonTTL = def.Cache.SkeletonTTL
	}
	if c.Prediction.Window == 0 {
		c.Prediction.Window = def.Prediction.Window
	}
	if c.Prediction.PrefetchThreshold == 0 {
		c.Prediction.PrefetchThreshold = def.Prediction.PrefetchThreshold
	}
	if c.Prediction.PrefetchFanout == 0 {
		c.Prediction.PrefetchFanout = def.Prediction.PrefetchFanout
	}
	if c.Speculation.MaxPrefetch == 0 {
		c.Speculation.MaxPrefetch = def.Speculation.MaxPrefetch
	}
	if c.Speculation.MaxPrerender == 0 {
		c.Speculation.MaxPrerender = def.Speculation.MaxPrerender
	}
	if c.Speculation.HoverDelay == "" {
		c.Speculation.HoverDelay = def.Speculation.HoverDelay
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = def.Serve.Port
	}
	if c.Serve.Host == "" {
		c.Serve.Host = def.Serve.Host
	}
}

// Validate checks that every configured value is usable.
func (c *Config) Validate() error {
	if c.Cache.MaxSessions < 0 {
		return errors.New("C002").WithDetail("cache.maxSessions must be positive, got %d", c.Cache.MaxSessions)
	}
	if c.Cache.MaxSkeletons < 0 {
		return errors.New("C002").WithDetail("cache.maxSkeletons must be positive, got %d", c.Cache.MaxSkeletons)
	}
	if _, err := time.ParseDuration(c.Cache.SessionTTL); err != nil {
		return errors.New("C002").
			WithDetail("cache.sessionTtl %q is not a duration", c.Cache.SessionTTL).
			WithSuggestion(`Use Go duration syntax, e.g. "5m" or "90s"`)
	}
	if _, err := time.ParseDuration(c.Cache.SkeletonTTL); err != nil {
		return errors.New("C002").
			WithDetail("cache.skeletonTtl %q is not a duration", c.Cache.SkeletonTTL).
			WithSuggestion(`Use Go duration syntax, e.g. "30m"`)
	}
	if c.Prediction.Window < 0 {
		return errors.New("C002").WithDetail("prediction.window must be positive, got %d", c.Prediction.Window)
	}
	if t := c.Prediction.PrefetchThreshold; t <= 0 || t >= 1 {
		return errors.New("C002").WithDetail("prediction.prefetchThreshold must be in (0, 1), got %g", t)
	}
	if c.Prediction.PrefetchFanout < 0 {
		return errors.New("C002").WithDetail("prediction.prefetchFanout must be positive, got %d", c.Prediction.PrefetchFanout)
	}
	if c.Speculation.MaxPrefetch < 0 || c.Speculation.MaxPrerender < 0 {
		return errors.New("C002").WithDetail("speculation bounds must be positive")
	}
	if _, err := time.ParseDuration(c.Speculation.HoverDelay); err != nil {
		return errors.New("C002").
			WithDetail("speculation.hoverDelay %q is not a duration", c.Speculation.HoverDelay).
			WithSuggestion(`Use Go duration syntax, e.g. "100ms"`)
	}
	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return errors.New("C002").WithDetail("serve.port must be in 1..65535, got %d", c.Serve.Port)
	}
	return nil
}

// SessionTTL returns the parsed session TTL.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.SessionTTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// SkeletonTTL returns the parsed skeleton TTL.
func (c *Config) SkeletonTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.SkeletonTTL)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// HoverDelay returns the parsed hover-intent delay.
func (c *Config) HoverDelay() time.Duration {
	d, err := time.ParseDuration(c.Speculation.HoverDelay)
	if err != nil {
		return 100 * time.Millisecond
	}
	return d
}

// ServeAddress returns the host:port the diagnostics server binds to.
func (c *Config) ServeAddress() string {
	return net.JoinHostPort(c.Serve.Host, strconv.Itoa(c.Serve.Port))
}

// ManifestPath returns the manifest path resolved against the config
// file's directory.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Manifest) || c.configPath == "" {
		return c.Manifest
	}
	return filepath.Join(filepath.Dir(c.configPath), c.Manifest)
}

// Exists reports whether an aeon.json exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
