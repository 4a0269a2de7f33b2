// Package errcat resolves symbolic error codes to status codes and
// human-readable text. The catalog ships inside the binary and is parsed
// once at first use; lookups never fail, unknown codes resolve to a
// placeholder entry.
package errcat

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"strings"
	"sync"
	"time"
)

//go:embed catalog.csv
var rawCatalog string

// Entry is one catalog row.
type Entry struct {
	Status      string
	Code        string
	Description string
}

const notFoundDescription = "error code not found"

var (
	loadOnce sync.Once
	loadErr  error
	entries  map[string]Entry
)

func load() {
	entries, loadErr = parse(rawCatalog)
}

// parse reads a semicolon-delimited catalog. Any malformed row aborts the
// whole catalog; a partial table never escapes.
func parse(raw string) (map[string]Entry, error) {
	r := csv.NewReader(strings.NewReader(raw))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error catalog is malformed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("error catalog is empty")
	}

	table := make(map[string]Entry, len(records)-1)
	for i, rec := range records[1:] { // first row is the header
		if len(rec) < 3 {
			return nil, fmt.Errorf("error catalog row %d has %d fields, want 3", i+2, len(rec))
		}
		e := Entry{Status: rec[0], Code: rec[1], Description: rec[2]}
		table[strings.ToLower(e.Code)] = e
	}
	return table, nil
}

// Lookup resolves a symbolic code case-insensitively. Unknown codes return a
// placeholder entry rather than an error; a malformed embedded catalog is the
// only failure mode.
func Lookup(code string) (Entry, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Entry{}, loadErr
	}
	if e, ok := entries[strings.ToLower(code)]; ok {
		return e, nil
	}
	return Entry{Status: "", Code: code, Description: notFoundDescription}, nil
}

// Format composes a timestamped diagnostic line from a resolved code and an
// optional extra message.
func Format(code, extra string) string {
	e, err := Lookup(code)
	if err != nil {
		e = Entry{Code: code, Description: notFoundDescription}
	}
	ts := time.Now().Format(time.RFC3339)
	if extra == "" {
		if e.Status == "" {
			return fmt.Sprintf("%s %s: %s", ts, e.Code, e.Description)
		}
		return fmt.Sprintf("%s [%s] %s: %s", ts, e.Status, e.Code, e.Description)
	}
	if e.Status == "" {
		return fmt.Sprintf("%s %s: %s: %s", ts, e.Code, e.Description, extra)
	}
	return fmt.Sprintf("%s [%s] %s: %s: %s", ts, e.Status, e.Code, e.Description, extra)
}
