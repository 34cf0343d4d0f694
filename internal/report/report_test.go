package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/rpmtrust/internal/models"
	"github.com/ralt/rpmtrust/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleEntries() []Entry {
	cat := models.PackageInfo{Name: "cat", Version: "1.0", Release: "1", Architecture: "x86_64", Filename: "/srv/cat.rpm", Size: 10}
	return []Entry{
		NewEntry(models.PackageInfo{Filename: "/srv/dog.rpm"}, StatusUnsigned, models.NewError(models.ErrUnsignedFile, "/srv/dog.rpm", "")),
		NewEntry(cat, StatusValid, nil),
		NewEntry(models.PackageInfo{Filename: "/srv/bad.rpm"}, StatusInvalid, nil),
	}
}

func TestNewSortsAndCounts(t *testing.T) {
	r := New(sampleEntries())

	require.Len(t, r.Entries, 3)
	assert.Equal(t, "/srv/bad.rpm", r.Entries[0].File)
	assert.Equal(t, "/srv/cat.rpm", r.Entries[1].File)
	assert.Equal(t, "cat-1.0-1.x86_64", r.Entries[1].Package)
	assert.Equal(t, Summary{Total: 3, Valid: 1, Invalid: 1, Unsigned: 1}, r.Summary)
	assert.Contains(t, r.Entries[2].Error, "not signed")
}

func TestFailed(t *testing.T) {
	assert.True(t, New(sampleEntries()).Failed(false))

	unsignedOnly := New([]Entry{{File: "a.rpm", Status: StatusUnsigned}, {File: "b.rpm", Status: StatusValid}})
	assert.False(t, unsignedOnly.Failed(false))
	assert.True(t, unsignedOnly.Failed(true))

	withError := New([]Entry{{File: "a.rpm", Status: StatusError}})
	assert.True(t, withError.Failed(false))
}

func TestWriteJSONCompressed(t *testing.T) {
	for _, name := range []string{"report.json", "report.json.gz", "report.json.zst", "report.json.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", name)
			require.NoError(t, New(sampleEntries()).Write(path))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			data, err := utils.Decompress(raw, utils.CompressionFor(path))
			require.NoError(t, err)

			var got Report
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, 3, got.Summary.Total)
			assert.Equal(t, StatusValid, got.Entries[1].Status)
		})
	}
}

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, New(sampleEntries()).Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, 1, got.Summary.Unsigned)
	assert.Equal(t, "/srv/dog.rpm", got.Entries[2].File)
}

func TestWriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := New(nil).Write(filepath.Join(blocker, "report.json"))

	var te *models.TrustError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, models.ErrReport, te.Type)
}

func TestReadRoundTrip(t *testing.T) {
	for _, name := range []string{"report.json.zst", "report.yml.gz", "report.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, New(sampleEntries()).Write(path))

			got, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, Summary{Total: 3, Valid: 1, Invalid: 1, Unsigned: 1}, got.Summary)
			assert.Equal(t, "cat-1.0-1.x86_64", got.Entries[1].Package)
		})
	}
}

func TestReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0644))

	_, err := Read(path)
	assert.True(t, models.IsType(err, models.ErrReport), "got %v", err)
}
