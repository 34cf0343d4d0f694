package models

// PackageInfo represents an RPM package file with the header fields used
// when reporting on it
type PackageInfo struct {
	Name         string
	Version      string
	Release      string
	Architecture string

	// File information
	Filename  string
	Size      int64
	SHA256Sum string
}

// NEVRA returns the name-version-release.arch label of the package, or the
// file name when the header could not be read
func (p PackageInfo) NEVRA() string {
	if p.Name == "" {
		return p.Filename
	}
	label := p.Name
	if p.Version != "" {
		label += "-" + p.Version
	}
	if p.Release != "" {
		label += "-" + p.Release
	}
	if p.Architecture != "" {
		label += "." + p.Architecture
	}
	return label
}
