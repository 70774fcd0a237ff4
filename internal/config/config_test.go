package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIURL, EnvStudioURL, EnvLogLevel, EnvCloudName, EnvUploadPreset, legacyEnvAPIURL, legacyEnvStudioURL} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.StudioURL != defaultStudioURL {
		t.Fatalf("StudioURL = %q, want %q", cfg.StudioURL, defaultStudioURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}

	wantCreds, err := expandPath(defaultCredentialsPath)
	if err != nil {
		t.Fatalf("expandPath(defaultCredentialsPath) returned error: %v", err)
	}
	if cfg.CredentialsPath != wantCreds {
		t.Fatalf("CredentialsPath = %q, want %q", cfg.CredentialsPath, wantCreds)
	}
	if !strings.HasPrefix(cfg.LogPath, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", cfg.LogPath, home)
	}
	if cfg.ImageHost.Enabled() {
		t.Fatal("ImageHost.Enabled() = true, want false without an account")
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  https://auth.example.com  "
studio_url = "https://studios.example.com"
credentials_path = "  ~/.booth/creds.toml  "
log_level = "DEBUG"
log_format = "text"
request_timeout = "3s"

[image_host]
cloud_name = " demo "
upload_preset = "unsigned"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://auth.example.com" {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, "https://auth.example.com")
	}
	if cfg.StudioURL != "https://studios.example.com" {
		t.Fatalf("StudioURL = %q", cfg.StudioURL)
	}
	if cfg.CredentialsPath != filepath.Join(home, ".booth", "creds.toml") {
		t.Fatalf("CredentialsPath = %q, want it under HOME %q", cfg.CredentialsPath, home)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "text" {
		t.Fatalf("LogLevel/LogFormat = %q/%q, want debug/text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("RequestTimeout = %v, want 3s", cfg.RequestTimeout)
	}
	if !cfg.ImageHost.Enabled() || cfg.ImageHost.CloudName != "demo" {
		t.Fatalf("ImageHost = %#v, want demo/unsigned", cfg.ImageHost)
	}
	if cfg.ImageHost.BaseURL != defaultImageHostURL {
		t.Fatalf("ImageHost.BaseURL = %q, want default", cfg.ImageHost.BaseURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearEnv(t)
	t.Setenv(legacyEnvAPIURL, "http://legacy:5000")
	t.Setenv(EnvStudioURL, "http://studios:7000")
	t.Setenv(legacyEnvStudioURL, "http://ignored:1")
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvCloudName, "envcloud")
	t.Setenv(EnvUploadPreset, "envpreset")

	cfg, err := Load(filepath.Join(home, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://legacy:5000" {
		t.Fatalf("APIURL = %q, want legacy alias value", cfg.APIURL)
	}
	if cfg.StudioURL != "http://studios:7000" {
		t.Fatalf("StudioURL = %q, want BOOTH_ value to win", cfg.StudioURL)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if !cfg.ImageHost.Enabled() {
		t.Fatalf("ImageHost = %#v, want enabled from env", cfg.ImageHost)
	}
}

func TestLoad_RejectsBadTimeout(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`request_timeout = "soon"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load returned nil error for invalid request_timeout")
	}
}
