package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
)

const (
	BackendSQLite = "sqlite"
	BackendPebble = "pebble"
)

// Config holds runtime settings for the client.
type Config struct {
	APIBaseURL  string
	RealtimeURL string

	SessionBackend string
	// SessionPath is the sqlite file or pebble directory; empty selects a
	// per-user default (see SessionLocation).
	SessionPath  string
	CookieMaxAge time.Duration

	RequestTimeout    time.Duration
	ProgressHideDelay time.Duration
	MaxImageDimension int
	VideoUploadPath   string

	LogLevel string
}

func Default() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

// LoadDefaults populates c with the production endpoints.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://poputchiki.ru"
	c.RealtimeURL = "ws://poputchiki.ru/api/realtime"
	c.SessionBackend = BackendSQLite
	c.SessionPath = ""
	c.CookieMaxAge = 30 * 24 * time.Hour
	c.RequestTimeout = 15 * time.Second
	c.ProgressHideDelay = 500 * time.Millisecond
	c.MaxImageDimension = 1600
	c.VideoUploadPath = "/api/image"
	c.LogLevel = "info"
}

// Load builds a Config from every source, in precedence order. fs must
// have been set up with AddFlags and parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	if path, _ := fs.GetString(flagConfig); path != "" {
		if err := cfg.LoadJSON(path); err != nil {
			return nil, err
		}
	}

	envFile, _ := fs.GetString(flagEnvFile)
	if err := cfg.LoadEnv(envFile, fs.Changed(flagEnvFile)); err != nil {
		return nil, err
	}

	if err := cfg.ApplyFlags(fs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	for name, raw := range map[string]string{"api_base_url": c.APIBaseURL, "realtime_url": c.RealtimeURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: %s %q is not an absolute url", name, raw)
		}
	}
	switch c.SessionBackend {
	case BackendSQLite, BackendPebble:
	default:
		return fmt.Errorf("config: unknown session_backend %q", c.SessionBackend)
	}
	if c.CookieMaxAge < 0 || c.RequestTimeout < 0 || c.ProgressHideDelay < 0 {
		return fmt.Errorf("config: durations must not be negative")
	}
	if c.MaxImageDimension < 0 {
		return fmt.Errorf("config: max_image_dimension must not be negative")
	}
	return nil
}

// SessionLocation is where the cookie store lives.
func (c *Config) SessionLocation() string {
	if c.SessionPath != "" {
		return c.SessionPath
	}
	name := "cookies.db"
	if c.SessionBackend == BackendPebble {
		name = "cookies"
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "poputchiki", name)
}
