package scanner

import "context"

// ScannedPackage represents an RPM file found during scanning
type ScannedPackage struct {
	Path string
	Size int64
}

// Scanner interface for finding packages to check
type Scanner interface {
	// Scan returns the RPM files under each path; files are returned as-is,
	// directories are walked recursively
	Scan(ctx context.Context, paths ...string) ([]ScannedPackage, error)

	// IsRPM determines whether a file is an RPM package
	IsRPM(path string) (bool, error)
}
