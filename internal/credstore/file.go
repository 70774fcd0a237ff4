package credstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultCredentialsPath = "~/.local/share/booth/credentials.toml"

// DefaultPath returns the default credentials file path.
func DefaultPath() string {
	return defaultCredentialsPath
}

// File is a Store backed by a TOML file. The file is read once by Open and
// rewritten on every mutation. In-memory state is updated before the write,
// so a failed write still leaves the running process consistent.
type File struct {
	path string

	mu   sync.RWMutex
	cred Credential
}

// Open loads the credentials file at path, treating a missing or unreadable
// file as an empty store.
func Open(path string) (*File, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	f := &File{path: resolved}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("open credentials: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	// A corrupt file means the user has to log in again.
	if err := toml.Unmarshal(bytes, &f.cred); err != nil {
		f.cred = Credential{}
	}
	f.cred.AccessToken = strings.TrimSpace(f.cred.AccessToken)
	f.cred.RefreshToken = strings.TrimSpace(f.cred.RefreshToken)
	return f, nil
}

// Path returns the resolved file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) AccessToken() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cred.AccessToken, f.cred.AccessToken != ""
}

func (f *File) RefreshToken() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cred.RefreshToken, f.cred.RefreshToken != ""
}

func (f *File) Credential() Credential {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cred
}

func (f *File) SetAccessToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cred.AccessToken = token
	return f.writeLocked()
}

func (f *File) Save(cred Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cred = cred
	return f.writeLocked()
}

// Clear empties the store and removes the backing file.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cred = Credential{}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

func (f *File) writeLocked() error {
	if f.cred.Empty() {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove credentials: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	bytes, err := toml.Marshal(f.cred)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultCredentialsPath)
	}
	return expandPath(path)
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
