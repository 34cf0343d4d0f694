// Package rpmpkg reads the identifying header fields of RPM files
package rpmpkg

import (
	"fmt"
	"os"

	"github.com/ralt/rpmtrust/internal/models"
	"github.com/ralt/rpmtrust/internal/utils"
	"github.com/sassoftware/go-rpmutils"
)

// ParsePackage parses an RPM file and extracts the fields used in reports
func ParsePackage(path string) (*models.PackageInfo, error) {
	// Calculate checksums
	checksums, err := utils.CalculateChecksums(path)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksums: %w", err)
	}

	// Open RPM file
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Read RPM header
	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read RPM: %w", err)
	}

	return &models.PackageInfo{
		Name:         getStringTag(rpm, rpmutils.NAME),
		Version:      getStringTag(rpm, rpmutils.VERSION),
		Release:      getStringTag(rpm, rpmutils.RELEASE),
		Architecture: getStringTag(rpm, rpmutils.ARCH),
		Filename:     path,
		Size:         checksums.Size,
		SHA256Sum:    checksums.SHA256,
	}, nil
}

// Describe returns whatever can be learnt about path. Files that are not
// readable RPMs keep only their name and, if readable, size and checksum.
func Describe(path string) models.PackageInfo {
	if pkg, err := ParsePackage(path); err == nil {
		return *pkg
	}

	info := models.PackageInfo{Filename: path}
	if checksums, err := utils.CalculateChecksums(path); err == nil {
		info.Size = checksums.Size
		info.SHA256Sum = checksums.SHA256
	}
	return info
}

// getStringTag safely gets a string tag from RPM
func getStringTag(rpm *rpmutils.Rpm, tag int) string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	default:
		return fmt.Sprintf("%v", v)
	}

	return ""
}
