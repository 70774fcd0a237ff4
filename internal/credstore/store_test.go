package credstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMemory_SetAndClear(t *testing.T) {
	var m Memory

	if _, ok := m.AccessToken(); ok {
		t.Fatalf("AccessToken present on zero Memory, want absent")
	}

	if err := m.Save(Credential{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := m.SetAccessToken("a2"); err != nil {
		t.Fatalf("SetAccessToken returned error: %v", err)
	}
	if got, _ := m.AccessToken(); got != "a2" {
		t.Fatalf("AccessToken = %q, want a2", got)
	}
	if got, _ := m.RefreshToken(); got != "r1" {
		t.Fatalf("RefreshToken = %q, want r1", got)
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if !m.Credential().Empty() {
		t.Fatalf("Credential = %#v after Clear, want empty", m.Credential())
	}
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	f, err := Open(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if !f.Credential().Empty() {
		t.Fatalf("Credential = %#v, want empty", f.Credential())
	}
}

func TestFile_SaveReloadAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "credentials.toml")

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := f.Save(Credential{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := f.SetAccessToken("a2"); err != nil {
		t.Fatalf("SetAccessToken returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("file mode = %o, want 600", perm)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(raw), KeyAccessToken) || !strings.Contains(string(raw), KeyRefreshToken) {
		t.Fatalf("file = %q, want fixed key names", raw)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	got := reloaded.Credential()
	if got.AccessToken != "a2" || got.RefreshToken != "r1" {
		t.Fatalf("reloaded = %#v, want a2/r1", got)
	}

	if err := reloaded.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Stat after Clear = %v, want not exist", err)
	}
	if _, ok := reloaded.RefreshToken(); ok {
		t.Fatalf("RefreshToken present after Clear")
	}
}

func TestOpen_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")
	if err := os.WriteFile(path, []byte("accessToken = [\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if !f.Credential().Empty() {
		t.Fatalf("Credential = %#v, want empty", f.Credential())
	}
}

func TestOpen_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	f, err := Open("")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if !strings.HasPrefix(f.Path(), home) {
		t.Fatalf("Path = %q, want it under HOME %q", f.Path(), home)
	}
	want := filepath.Join(home, ".local", "share", "booth", "credentials.toml")
	if f.Path() != want {
		t.Fatalf("Path = %q, want %q", f.Path(), want)
	}
}
