// Package store persists fetched records as flat JSONL files, one file per
// identity (account, ISIN or currency code). It is a cache for re-runs, not
// a source of truth: any file can be deleted and re-fetched.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

const ext = ".jsonl"

// idRegexp keeps file names to characters safe on every filesystem.
var idRegexp = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Store is a repository of record lists keyed by identity, backed by one
// JSONL file per identity inside a single folder.
type Store[T any] struct {
	dir string
}

// Open creates the folder if needed and returns the store.
func Open[T any](dir string) (*Store[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create store folder %q: %w", dir, err)
	}
	return &Store[T]{dir: dir}, nil
}

func (s *Store[T]) path(id string) string {
	return filepath.Join(s.dir, idRegexp.ReplaceAllString(id, "_")+ext)
}

// Has reports whether records exist for the identity.
func (s *Store[T]) Has(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// Get returns the records stored for the identity, and whether any were
// found. A missing file is absence, not an error.
func (s *Store[T]) Get(id string) (records []T, found bool, err error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cannot open %q: %w", s.path(id), err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		txt := strings.TrimSpace(scanner.Text())
		if txt == "" {
			continue
		}
		var record T
		if err := json.Unmarshal([]byte(txt), &record); err != nil {
			return nil, false, fmt.Errorf("format error %s:%d: %w", s.path(id), line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("cannot read %q: %w", s.path(id), err)
	}
	return records, true, nil
}

// Put replaces the records stored for the identity. The file is written
// whole and renamed into place, so a crashed run never leaves a torn file.
func (s *Store[T]) Put(id string, records []T) error {
	tmp, err := os.CreateTemp(s.dir, "put-*")
	if err != nil {
		return fmt.Errorf("cannot create temp file in %q: %w", s.dir, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			tmp.Close()
			return fmt.Errorf("cannot encode record for %q: %w", id, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(id))
}

// Keys returns the identities present in the store, sorted.
func (s *Store[T]) Keys() ([]string, error) {
	entries, err := fs.Glob(os.DirFS(s.dir), "*"+ext)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, strings.TrimSuffix(entry, ext))
	}
	sort.Strings(keys)
	return keys, nil
}
