package scanner

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// RPM packages start with 0xED 0xAB 0xEE 0xDB
var rpmMagic = []byte{0xED, 0xAB, 0xEE, 0xDB}

// IsRPMFile determines whether path is an RPM package from its magic
// bytes, falling back to the file extension
func IsRPMFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(rpmMagic))
	n, err := io.ReadFull(f, header)
	if err != nil && n == 0 && err != io.EOF {
		return false, err
	}

	if bytes.Equal(header[:n], rpmMagic) {
		return true, nil
	}
	return filepath.Ext(path) == ".rpm", nil
}
