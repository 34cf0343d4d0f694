// Package report records the outcome of a batch signature check and
// writes it as JSON or YAML, compressed according to the file name.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ralt/rpmtrust/internal/models"
	"github.com/ralt/rpmtrust/internal/utils"
	"gopkg.in/yaml.v3"
)

// Status is the outcome recorded for one package
type Status string

const (
	StatusValid    Status = "valid"
	StatusInvalid  Status = "invalid"
	StatusUnsigned Status = "unsigned"
	StatusError    Status = "error"
)

// Entry is the result for one package file
type Entry struct {
	File    string `json:"file" yaml:"file"`
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
	SHA256  string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
	Size    int64  `json:"size" yaml:"size"`
	Status  Status `json:"status" yaml:"status"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary counts entries per status
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	Valid    int `json:"valid" yaml:"valid"`
	Invalid  int `json:"invalid" yaml:"invalid"`
	Unsigned int `json:"unsigned" yaml:"unsigned"`
	Errors   int `json:"errors" yaml:"errors"`
}

// Report is the outcome of checking a set of packages
type Report struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Summary     Summary   `json:"summary" yaml:"summary"`
	Entries     []Entry   `json:"entries" yaml:"entries"`
}

// New builds a report from entries, sorted by file name
func New(entries []Entry) *Report {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	r := &Report{GeneratedAt: time.Now().UTC(), Entries: sorted}
	for _, e := range sorted {
		r.Summary.Total++
		switch e.Status {
		case StatusValid:
			r.Summary.Valid++
		case StatusInvalid:
			r.Summary.Invalid++
		case StatusUnsigned:
			r.Summary.Unsigned++
		default:
			r.Summary.Errors++
		}
	}
	return r
}

// NewEntry builds the entry for a checked package
func NewEntry(pkg models.PackageInfo, status Status, err error) Entry {
	e := Entry{
		File:   pkg.Filename,
		SHA256: pkg.SHA256Sum,
		Size:   pkg.Size,
		Status: status,
	}
	if pkg.Name != "" {
		e.Package = pkg.NEVRA()
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// Failed reports whether any package is invalid or could not be checked,
// or, when strict, is unsigned
func (r *Report) Failed(strict bool) bool {
	if r.Summary.Invalid > 0 || r.Summary.Errors > 0 {
		return true
	}
	return strict && r.Summary.Unsigned > 0
}

// Marshal encodes the report as YAML for .yaml/.yml paths and JSON
// otherwise, then compresses it for .gz/.zst/.xz paths
func (r *Report) Marshal(path string) ([]byte, error) {
	var data []byte
	var err error

	if isYAML(path) {
		data, err = yaml.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return nil, err
	}

	return utils.Compress(data, utils.CompressionFor(path))
}

// Write writes the report to path
func (r *Report) Write(path string) error {
	data, err := r.Marshal(path)
	if err != nil {
		return &models.TrustError{Type: models.ErrReport, Subject: path, Err: err}
	}
	if err := utils.WriteFile(path, data, 0644); err != nil {
		return &models.TrustError{Type: models.ErrReport, Subject: path, Err: err}
	}
	return nil
}

// Unmarshal decodes a report written by Marshal for the same path
func Unmarshal(path string, raw []byte) (*Report, error) {
	data, err := utils.Decompress(raw, utils.CompressionFor(path))
	if err != nil {
		return nil, err
	}

	r := &Report{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, r)
	} else {
		err = json.Unmarshal(data, r)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Read loads the report stored at path
func Read(path string) (*Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.TrustError{Type: models.ErrReport, Subject: path, Err: err}
	}
	r, err := Unmarshal(path, raw)
	if err != nil {
		return nil, &models.TrustError{Type: models.ErrReport, Subject: path, Err: err}
	}
	return r, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(utils.TrimCompressionExt(path))) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
