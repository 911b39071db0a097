package config

import (
	"github.com/spf13/pflag"
)

const (
	flagConfig            = "config"
	flagEnvFile           = "env-file"
	flagAPI               = "api"
	flagRealtime          = "realtime"
	flagSessionBackend    = "session-backend"
	flagSessionPath       = "session-path"
	flagCookieMaxAge      = "cookie-max-age"
	flagTimeout           = "timeout"
	flagProgressHideDelay = "progress-hide-delay"
	flagMaxImageDimension = "max-image-dimension"
	flagVideoUploadPath   = "video-upload-path"
	flagLogLevel          = "log-level"
)

// AddFlags registers every setting on fs. Defaults shown in help are the
// built-in ones; only flags set explicitly override other sources.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP(flagConfig, "c", "", "path to JSON config file")
	fs.String(flagEnvFile, DefaultEnvFile, "path to dotenv file")
	fs.StringP(flagAPI, "a", d.APIBaseURL, "REST API base url")
	fs.StringP(flagRealtime, "r", d.RealtimeURL, "realtime WebSocket url")
	fs.String(flagSessionBackend, d.SessionBackend, "cookie store backend: sqlite or pebble")
	fs.String(flagSessionPath, d.SessionPath, "cookie store location (file for sqlite, directory for pebble)")
	fs.Duration(flagCookieMaxAge, d.CookieMaxAge, "cookie lifetime for tokens without an expiry; 0 keeps them forever")
	fs.Duration(flagTimeout, d.RequestTimeout, "per-request timeout")
	fs.Duration(flagProgressHideDelay, d.ProgressHideDelay, "how long a finished progress bar stays visible")
	fs.Int(flagMaxImageDimension, d.MaxImageDimension, "downscale photos larger than this before upload; 0 disables")
	fs.String(flagVideoUploadPath, d.VideoUploadPath, "video upload endpoint path")
	fs.String(flagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
}

// ApplyFlags copies explicitly set flags into c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case flagAPI:
			c.APIBaseURL, err = fs.GetString(f.Name)
		case flagRealtime:
			c.RealtimeURL, err = fs.GetString(f.Name)
		case flagSessionBackend:
			c.SessionBackend, err = fs.GetString(f.Name)
		case flagSessionPath:
			c.SessionPath, err = fs.GetString(f.Name)
		case flagCookieMaxAge:
			c.CookieMaxAge, err = fs.GetDuration(f.Name)
		case flagTimeout:
			c.RequestTimeout, err = fs.GetDuration(f.Name)
		case flagProgressHideDelay:
			c.ProgressHideDelay, err = fs.GetDuration(f.Name)
		case flagMaxImageDimension:
			c.MaxImageDimension, err = fs.GetInt(f.Name)
		case flagVideoUploadPath:
			c.VideoUploadPath, err = fs.GetString(f.Name)
		case flagLogLevel:
			c.LogLevel, err = fs.GetString(f.Name)
		}
	})
	return err
}
