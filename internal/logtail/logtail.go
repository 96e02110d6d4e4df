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
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

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
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded log line.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Err       string
	Fields    []Field // remaining keys, sorted by name
	Raw       string
}

// Field is an extra key/value of an entry, already rendered as text.
type Field struct {
	Key   string
	Value string
}

// Parse decodes a zerolog JSON line. Lines that are not JSON objects come back
// with only Raw and Message set.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		entry.Message = strings.TrimSpace(line)
		return entry
	}
	for key, val := range obj {
		switch key {
		case "time":
			if s, ok := val.(string); ok {
				entry.Time, _ = time.Parse(time.RFC3339, s)
			}
		case "level":
			entry.Level = text(val)
		case "component":
			entry.Component = text(val)
		case "message":
			entry.Message = text(val)
		case "err":
			entry.Err = text(val)
		default:
			entry.Fields = append(entry.Fields, Field{Key: key, Value: text(val)})
		}
	}
	sort.Slice(entry.Fields, func(i, j int) bool { return entry.Fields[i].Key < entry.Fields[j].Key })
	return entry
}

// ReadEntries reads and decodes the last maxLines lines of path.
func ReadEntries(path string, maxLines int) ([]Entry, error) {
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

func text(v any) string {
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
