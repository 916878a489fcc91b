package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"shotframe/model"
)

const capturesDir = "captures"

// Store keeps rendered captures on disk. Each image has a JSON record beside it.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// New creates a new Store instance with the given base directory.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// EnsureDirs creates the necessary directory structure for storing captures.
func (s *Store) EnsureDirs() error {
	return os.MkdirAll(filepath.Join(s.baseDir, capturesDir), 0o755)
}

// SaveCapture writes data and its record, organizing files by date. rec.Path
// and rec.Bytes are filled in.
func (s *Store) SaveCapture(rec *model.CaptureRecord, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec == nil {
		return fmt.Errorf("nil record")
	}
	if rec.Filename == "" || filepath.Base(rec.Filename) != rec.Filename {
		return fmt.Errorf("%w: invalid filename %q", model.ErrMalformedInput, rec.Filename)
	}

	t := rec.Timestamp.UTC()
	rel := filepath.Join(
		capturesDir,
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()),
		rec.Filename,
	)
	path := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	// Filenames have second resolution; keep earlier captures from the same second.
	path = uniquePath(path)
	rel = filepath.Join(filepath.Dir(rel), filepath.Base(path))
	rec.Filename = filepath.Base(path)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	rec.Path = filepath.ToSlash(rel)
	rec.Bytes = len(data)

	if err := writeRecord(path+".json", rec); err != nil {
		os.Remove(path)
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// writeRecord writes rec as JSON. A partially written record is removed so
// it cannot break later listings.
func writeRecord(path string, rec *model.CaptureRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func uniquePath(path string) string {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		p := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			return p
		}
	}
}

// ListCaptures retrieves all capture records within the specified time range.
// Records are sorted by timestamp in ascending order.
func (s *Store) ListCaptures(from, to time.Time) ([]model.CaptureRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from = from.UTC()
	to = to.UTC()

	base := filepath.Join(s.baseDir, capturesDir)
	var records []model.CaptureRecord

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		var r model.CaptureRecord
		if err := json.NewDecoder(f).Decode(&r); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		if r.Timestamp.IsZero() {
			return nil
		}

		t := r.Timestamp.UTC()
		if t.Before(from) || t.After(to) {
			return nil
		}

		records = append(records, r)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	return records, nil
}

// FindCapture returns the record with the given id.
func (s *Store) FindCapture(id string) (*model.CaptureRecord, error) {
	records, err := s.ListCaptures(time.Time{}, time.Now().AddDate(100, 0, 0))
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, &model.NotFoundError{Kind: "capture", ID: id}
}

// OpenCapture opens the image file of rec.
func (s *Store) OpenCapture(rec *model.CaptureRecord) (*os.File, error) {
	return os.Open(filepath.Join(s.baseDir, filepath.FromSlash(rec.Path)))
}
