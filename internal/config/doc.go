// Package config loads booth's configuration.
//
// # Overview
//
// booth talks to two services, an auth service and a studio service, and
// optionally to an image host. This package resolves where they live and
// where local state goes.
//
// # Resolution Order
//
//  1. A .env file in the working directory is loaded into the environment
//     when present (existing variables are not overwritten)
//  2. The TOML file at the given path, or ~/.config/booth/config.toml
//  3. Built-in defaults for any field the file leaves empty
//  4. Environment overrides
//
// # Default Values
//
//   - Auth service: http://localhost:5000
//   - Studio service: http://localhost:5001
//   - Credentials file: ~/.local/share/booth/credentials.toml
//   - Log file: ~/.local/state/booth/booth.log (JSON lines, level info)
//   - Request timeout: 10s
//   - Image host: https://api.cloudinary.com (disabled until cloud_name and
//     upload_preset are set)
//
// # Example
//
//	api_url = "https://auth.example.com"
//	studio_url = "https://studios.example.com"
//	log_level = "debug"
//	request_timeout = "15s"
//
//	[image_host]
//	cloud_name = "demo"
//	upload_preset = "unsigned"
//
// # Environment
//
//   - BOOTH_API_URL (or REACT_APP_API_URL)
//   - BOOTH_STUDIO_URL (or REACT_APP_STUDIO_URL)
//   - BOOTH_LOG_LEVEL
//   - BOOTH_CLOUD_NAME
//   - BOOTH_UPLOAD_PRESET
//
// # Path Expansion
//
// Paths beginning with ~ are expanded to the user's home directory and made
// absolute. If the home directory cannot be resolved the path is kept as
// written.
package config
