package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v, want nil, nil", got, err)
	}
}

func TestParseAndFormat(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 30, 15, 0, time.Local)
	line := fmt.Sprintf(`{"time":%q,"level":"WARN","msg":"studio refresh failed","component":"poller","failures":2,"error":"dial tcp: refused"}`,
		ts.Format(time.RFC3339Nano))

	e := Parse(line)
	if e.Raw {
		t.Fatal("Parse marked JSON record as raw")
	}
	if e.Level != "WARN" || e.Msg != "studio refresh failed" || e.Component != "poller" {
		t.Fatalf("Parse = %+v", e)
	}
	want := "09:30:15 WARN [poller] studio refresh failed error=dial tcp: refused failures=2"
	if got := e.Format(); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestParseRawLine(t *testing.T) {
	line := `time=2026-03-01T09:30:15Z level=INFO msg="logged out"`
	e := Parse(line)
	if !e.Raw || e.Format() != line {
		t.Fatalf("Parse(text) = %+v, want raw passthrough", e)
	}
}

func TestTailSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booth.log")
	data := `{"level":"INFO","msg":"one"}` + "\n\n" + `{"level":"DEBUG","msg":"two"}` + "\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	entries, err := Tail(path, 10)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if len(entries) != 2 || entries[1].Format() != "DEBUG two" {
		t.Fatalf("Tail() = %+v", entries)
	}
}
