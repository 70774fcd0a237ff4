package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file reads as empty.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	start := 0
	if count == maxLines {
		start = next
	}
	for i := range lines {
		lines[i] = ring[(start+i)%maxLines]
	}
	return lines, nil
}

// Attr is one extra key/value on a log record.
type Attr struct {
	Key   string
	Value string
}

// Entry is a parsed slog JSON record. Lines that are not JSON keep their
// text in Msg with Raw set.
type Entry struct {
	Time      time.Time
	Level     string
	Msg       string
	Component string
	Attrs     []Attr
	Raw       bool
}

// Parse decodes one line written by slog's JSON handler.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Entry{Msg: line, Raw: true}
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return Entry{Msg: line, Raw: true}
	}

	var e Entry
	if ts, ok := record["time"].(string); ok {
		e.Time, _ = time.Parse(time.RFC3339Nano, ts)
	}
	e.Level, _ = record["level"].(string)
	e.Msg, _ = record["msg"].(string)
	e.Component, _ = record["component"].(string)
	for _, k := range []string{"time", "level", "msg", "component"} {
		delete(record, k)
	}

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.Attrs = append(e.Attrs, Attr{Key: k, Value: stringify(record[k])})
	}
	return e
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// Format renders e as "15:04:05 LEVEL [component] msg key=value ...".
func (e Entry) Format() string {
	if e.Raw {
		return e.Msg
	}
	parts := make([]string, 0, 4+len(e.Attrs))
	if !e.Time.IsZero() {
		parts = append(parts, e.Time.In(time.Local).Format("15:04:05"))
	}
	level := strings.ToUpper(strings.TrimSpace(e.Level))
	if level == "" {
		level = "INFO"
	}
	parts = append(parts, level)
	if c := strings.TrimSpace(e.Component); c != "" {
		parts = append(parts, "["+c+"]")
	}
	if msg := strings.TrimSpace(e.Msg); msg != "" {
		parts = append(parts, msg)
	}
	for _, a := range e.Attrs {
		if a.Value == "" {
			continue
		}
		parts = append(parts, a.Key+"="+a.Value)
	}
	return strings.Join(parts, " ")
}

// Tail reads the last maxLines records of path and formats them.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}
