package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for filesystem scanning
type FileSystemScanner struct{}

// NewFileSystemScanner creates a new filesystem scanner
func NewFileSystemScanner() *FileSystemScanner {
	return &FileSystemScanner{}
}

// Scan returns the RPM files named by paths, walking directories
func (s *FileSystemScanner) Scan(ctx context.Context, paths ...string) ([]ScannedPackage, error) {
	var packages []ScannedPackage

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}

		// Explicitly named files are always checked
		if !info.IsDir() {
			packages = append(packages, ScannedPackage{Path: root, Size: info.Size()})
			continue
		}

		found, err := s.walk(ctx, root)
		if err != nil {
			return nil, err
		}
		packages = append(packages, found...)
	}

	return packages, nil
}

func (s *FileSystemScanner) walk(ctx context.Context, dir string) ([]ScannedPackage, error) {
	var packages []ScannedPackage

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Skip directories
		if info.IsDir() {
			return nil
		}

		isRPM, err := s.IsRPM(path)
		if err != nil {
			logrus.Warnf("Failed to detect type for %s: %v", path, err)
			return nil
		}
		if !isRPM {
			return nil
		}

		logrus.Debugf("Found rpm package: %s", path)

		packages = append(packages, ScannedPackage{
			Path: path,
			Size: info.Size(),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	logrus.Infof("Found %d packages in %s", len(packages), dir)
	return packages, nil
}

// IsRPM determines whether a file is an RPM package
func (s *FileSystemScanner) IsRPM(path string) (bool, error) {
	return IsRPMFile(path)
}
