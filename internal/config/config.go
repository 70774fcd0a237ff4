package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything booth needs to reach its services.
type Config struct {
	APIURL          string
	StudioURL       string
	CredentialsPath string
	LogPath         string
	LogLevel        string
	LogFormat       string
	RequestTimeout  time.Duration
	ImageHost       ImageHost
}

// ImageHost describes the image upload account.
type ImageHost struct {
	BaseURL      string
	CloudName    string
	UploadPreset string
}

// Enabled reports whether uploads are configured.
func (h ImageHost) Enabled() bool {
	return h.CloudName != "" && h.UploadPreset != ""
}

const (
	defaultConfigPath      = "~/.config/booth/config.toml"
	defaultCredentialsPath = "~/.local/share/booth/credentials.toml"
	defaultLogPath         = "~/.local/state/booth/booth.log"
	defaultAPIURL          = "http://localhost:5000"
	defaultStudioURL       = "http://localhost:5001"
	defaultImageHostURL    = "https://api.cloudinary.com"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultRequestTimeout  = 10 * time.Second
)

// Environment overrides. The REACT_APP_ names are accepted so existing .env
// files keep working.
const (
	EnvAPIURL       = "BOOTH_API_URL"
	EnvStudioURL    = "BOOTH_STUDIO_URL"
	EnvLogLevel     = "BOOTH_LOG_LEVEL"
	EnvCloudName    = "BOOTH_CLOUD_NAME"
	EnvUploadPreset = "BOOTH_UPLOAD_PRESET"

	legacyEnvAPIURL    = "REACT_APP_API_URL"
	legacyEnvStudioURL = "REACT_APP_STUDIO_URL"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		StudioURL:       defaultStudioURL,
		CredentialsPath: mustExpand(defaultCredentialsPath),
		LogPath:         mustExpand(defaultLogPath),
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
		RequestTimeout:  defaultRequestTimeout,
		ImageHost:       ImageHost{BaseURL: defaultImageHostURL},
	}
}

// Load reads .env from the working directory when present, then the TOML
// config at path (or the default location), then applies environment
// overrides. A missing config file yields defaults.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL          string `toml:"api_url"`
		StudioURL       string `toml:"studio_url"`
		CredentialsPath string `toml:"credentials_path"`
		LogPath         string `toml:"log_path"`
		LogLevel        string `toml:"log_level"`
		LogFormat       string `toml:"log_format"`
		RequestTimeout  string `toml:"request_timeout"`
		ImageHost       struct {
			BaseURL      string `toml:"base_url"`
			CloudName    string `toml:"cloud_name"`
			UploadPreset string `toml:"upload_preset"`
		} `toml:"image_host"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	setString(&cfg.APIURL, raw.APIURL)
	setString(&cfg.StudioURL, raw.StudioURL)
	setString(&cfg.LogLevel, strings.ToLower(raw.LogLevel))
	setString(&cfg.LogFormat, strings.ToLower(raw.LogFormat))
	setString(&cfg.ImageHost.BaseURL, raw.ImageHost.BaseURL)
	setString(&cfg.ImageHost.CloudName, raw.ImageHost.CloudName)
	setString(&cfg.ImageHost.UploadPreset, raw.ImageHost.UploadPreset)
	if p := strings.TrimSpace(raw.CredentialsPath); p != "" {
		cfg.CredentialsPath = mustExpand(p)
	}
	if p := strings.TrimSpace(raw.LogPath); p != "" {
		cfg.LogPath = mustExpand(p)
	}
	if t := strings.TrimSpace(raw.RequestTimeout); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return Config{}, fmt.Errorf("parse request_timeout: %w", err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("request_timeout must not be negative")
		}
		cfg.RequestTimeout = d
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.APIURL, firstEnv(EnvAPIURL, legacyEnvAPIURL))
	setString(&cfg.StudioURL, firstEnv(EnvStudioURL, legacyEnvStudioURL))
	setString(&cfg.LogLevel, strings.ToLower(os.Getenv(EnvLogLevel)))
	setString(&cfg.ImageHost.CloudName, os.Getenv(EnvCloudName))
	setString(&cfg.ImageHost.UploadPreset, os.Getenv(EnvUploadPreset))
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func setString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
