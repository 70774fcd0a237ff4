// Package upload sends studio images to the image host and returns the
// hosted URL.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/booth/internal/apiclient"
)

// DefaultBaseURL is the public image host API.
const DefaultBaseURL = "https://api.cloudinary.com"

const maxImageBytes = 10 << 20

// Config describes the image host account.
type Config struct {
	BaseURL      string
	CloudName    string
	UploadPreset string
	Timeout      time.Duration
}

// Uploader posts images as unsigned multipart uploads.
type Uploader struct {
	endpoint string
	preset   string
	cloud    string
	doer     apiclient.Doer
	logger   *slog.Logger
}

// New builds an Uploader. CloudName and UploadPreset are required.
func New(cfg Config, logger *slog.Logger) (*Uploader, error) {
	cloud := strings.TrimSpace(cfg.CloudName)
	preset := strings.TrimSpace(cfg.UploadPreset)
	if cloud == "" || preset == "" {
		return nil, fmt.Errorf("image host requires cloud_name and upload_preset")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse image host url: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Uploader{
		endpoint: base + "/v1_1/" + url.PathEscape(cloud) + "/image/upload",
		preset:   preset,
		cloud:    cloud,
		doer:     apiclient.Chain(&http.Client{Timeout: timeout}, apiclient.RequestID(), apiclient.UserAgent("booth/0.1")),
		logger:   logger.With("component", "upload"),
	}, nil
}

// Upload reads the image at path and uploads it.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("image path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("image path %s is a directory", path)
	}
	if info.Size() > maxImageBytes {
		return "", fmt.Errorf("image %s is larger than %d MB", filepath.Base(path), maxImageBytes>>20)
	}
	return u.UploadReader(ctx, filepath.Base(path), f)
}

// UploadReader uploads the image read from r under the given file name.
func (u *Uploader) UploadReader(ctx context.Context, name string, r io.Reader) (string, error) {
	if u == nil {
		return "", fmt.Errorf("uploader is nil")
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, name, r, u.preset, u.cloud))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		_ = pr.Close()
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := u.doer.Do(req)
	if err != nil {
		_ = pr.Close()
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		u.logger.Warn("image upload rejected", "status", resp.StatusCode)
		return "", fmt.Errorf("upload failed: %s", uploadError(body, resp.StatusCode))
	}

	var payload struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if payload.SecureURL == "" {
		return "", fmt.Errorf("upload failed: response missing secure_url")
	}
	u.logger.Info("image uploaded", "name", name, "elapsed", time.Since(start))
	return payload.SecureURL, nil
}

func writeForm(mw *multipart.Writer, name string, r io.Reader, preset, cloud string) error {
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	if err := mw.WriteField("upload_preset", preset); err != nil {
		return err
	}
	if err := mw.WriteField("cloud_name", cloud); err != nil {
		return err
	}
	return mw.Close()
}

func uploadError(body []byte, status int) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}
