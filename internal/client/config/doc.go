// Package config loads runtime configuration for the poputchiki CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see Default).
//  2. Optional JSON file selected with -c/--config.
//  3. Environment: a .env file (--env-file, default ".env" when present)
//     overlaid by POPUTCHIKI_* process variables.
//  4. Command-line flags that were set explicitly.
//
// # JSON schema
//
// Durations may be strings like "3s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://poputchiki.ru",
//	  "realtime_url": "ws://poputchiki.ru/api/realtime",
//	  "session_backend": "sqlite",
//	  "session_path": "/home/me/.config/poputchiki/cookies.db",
//	  "cookie_max_age": "720h",
//	  "request_timeout": "15s",
//	  "progress_hide_delay": "500ms",
//	  "max_image_dimension": 1600,
//	  "video_upload_path": "/api/image",
//	  "log_level": "info"
//	}
package config
