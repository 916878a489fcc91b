package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shotframe/model"
)

func record(id string, ts time.Time) *model.CaptureRecord {
	return &model.CaptureRecord{
		ID:        id,
		Timestamp: ts,
		Filename:  "podman-desktop-app-any-" + id + ".png",
		Options:   model.ScreenshotOptions{PlatformID: "any", ThemeID: "default", Appearance: model.AppearanceLight, Format: model.FormatPNG},
		Width:     120,
		Height:    120,
	}
}

func TestSaveAndListCaptures(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.EnsureDirs())

	day := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	second := record("b", day.Add(time.Hour))
	first := record("a", day)
	require.NoError(t, s.SaveCapture(second, []byte("second")))
	require.NoError(t, s.SaveCapture(first, []byte("first")))

	assert.Equal(t, "captures/2025/06/01/podman-desktop-app-any-a.png", first.Path)
	assert.Equal(t, 5, first.Bytes)

	all, err := s.ListCaptures(day.Add(-time.Hour), day.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)

	some, err := s.ListCaptures(day.Add(30*time.Minute), day.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "b", some[0].ID)
}

func TestListCapturesEmptyStore(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing"))

	records, err := s.ListCaptures(time.Time{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFindAndOpenCapture(t *testing.T) {
	s := New(t.TempDir())
	rec := record("abc", time.Now().Add(-time.Minute))
	require.NoError(t, s.SaveCapture(rec, []byte("pixels")))

	found, err := s.FindCapture("abc")
	require.NoError(t, err)
	assert.Equal(t, rec.Filename, found.Filename)

	f, err := s.OpenCapture(found)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	_, err = s.FindCapture("nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSaveCaptureRejectsPaths(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	rec := record("x", time.Now())
	rec.Filename = "../escape.png"
	assert.ErrorIs(t, s.SaveCapture(rec, []byte("x")), model.ErrMalformedInput)

	_, err := os.Stat(filepath.Join(dir, "escape.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveCaptureKeepsSameSecondCaptures(t *testing.T) {
	s := New(t.TempDir())
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a := record("same", ts)
	b := record("same", ts)
	b.ID = "other"
	require.NoError(t, s.SaveCapture(a, []byte("one")))
	require.NoError(t, s.SaveCapture(b, []byte("two")))

	assert.Equal(t, "podman-desktop-app-any-same.png", a.Filename)
	assert.Equal(t, "podman-desktop-app-any-same-1.png", b.Filename)
	assert.Equal(t, "captures/2025/06/01/podman-desktop-app-any-same-1.png", b.Path)

	list, err := s.ListCaptures(ts.Add(-time.Minute), ts.Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSaveCaptureReportsRecordWriteFailure(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := record("a", ts)

	// A directory where the record file goes makes the write fail.
	recordPath := filepath.Join(dir, "captures", "2025", "06", "01", rec.Filename+".json")
	require.NoError(t, os.MkdirAll(recordPath, 0o755))

	assert.Error(t, s.SaveCapture(rec, []byte("img")))
	_, err := os.Stat(strings.TrimSuffix(recordPath, ".json"))
	assert.True(t, os.IsNotExist(err), "image without a record is removed")

	list, err := s.ListCaptures(ts.Add(-time.Hour), ts.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWriteRecordIsComplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.json")
	rec := record("a", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	require.NoError(t, writeRecord(path, rec))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var got model.CaptureRecord
	require.NoError(t, json.NewDecoder(f).Decode(&got))
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, rec.Timestamp.Equal(got.Timestamp))
}
