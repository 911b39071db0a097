package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvPrefix      = "POPUTCHIKI_"
	DefaultEnvFile = ".env"
)

// lookupEnv is swapped in tests.
var lookupEnv = os.LookupEnv

// LoadEnv overlays c with POPUTCHIKI_* settings. Values come from the
// dotenv file first and from the process environment second, so exported
// variables win. A missing file is an error only when required is set.
func (c *Config) LoadEnv(file string, required bool) error {
	if file == "" {
		file = DefaultEnvFile
	}
	fromFile, err := godotenv.Read(file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || required {
			return fmt.Errorf("config: read env file %s: %w", file, err)
		}
		fromFile = map[string]string{}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookupEnv(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := fromFile[EnvPrefix+key]
		return v, ok
	}

	for key, dst := range map[string]*string{
		"API_BASE_URL":      &c.APIBaseURL,
		"REALTIME_URL":      &c.RealtimeURL,
		"SESSION_BACKEND":   &c.SessionBackend,
		"SESSION_PATH":      &c.SessionPath,
		"VIDEO_UPLOAD_PATH": &c.VideoUploadPath,
		"LOG_LEVEL":         &c.LogLevel,
	} {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	for key, dst := range map[string]*time.Duration{
		"COOKIE_MAX_AGE":      &c.CookieMaxAge,
		"REQUEST_TIMEOUT":     &c.RequestTimeout,
		"PROGRESS_HIDE_DELAY": &c.ProgressHideDelay,
	} {
		if v, ok := get(key); ok {
			d, err := parseDuration(v)
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	if v, ok := get("MAX_IMAGE_DIMENSION"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sMAX_IMAGE_DIMENSION: %w", EnvPrefix, err)
		}
		c.MaxImageDimension = n
	}
	return nil
}
