package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// jsonConfig is the file DTO. Pointer fields tell "absent" from "zero" so a
// file only overrides what it names.
type jsonConfig struct {
	APIBaseURL        *string   `json:"api_base_url"`
	RealtimeURL       *string   `json:"realtime_url"`
	SessionBackend    *string   `json:"session_backend"`
	SessionPath       *string   `json:"session_path"`
	CookieMaxAge      *Duration `json:"cookie_max_age"`
	RequestTimeout    *Duration `json:"request_timeout"`
	ProgressHideDelay *Duration `json:"progress_hide_delay"`
	MaxImageDimension *int      `json:"max_image_dimension"`
	VideoUploadPath   *string   `json:"video_upload_path"`
	LogLevel          *string   `json:"log_level"`
}

// LoadJSON overlays c with the values present in the file at path.
func (c *Config) LoadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	setString(&c.APIBaseURL, jc.APIBaseURL)
	setString(&c.RealtimeURL, jc.RealtimeURL)
	setString(&c.SessionBackend, jc.SessionBackend)
	setString(&c.SessionPath, jc.SessionPath)
	setDuration(&c.CookieMaxAge, jc.CookieMaxAge)
	setDuration(&c.RequestTimeout, jc.RequestTimeout)
	setDuration(&c.ProgressHideDelay, jc.ProgressHideDelay)
	if jc.MaxImageDimension != nil {
		c.MaxImageDimension = *jc.MaxImageDimension
	}
	setString(&c.VideoUploadPath, jc.VideoUploadPath)
	setString(&c.LogLevel, jc.LogLevel)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = time.Duration(*v)
	}
}
