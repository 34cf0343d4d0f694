package rpmsig

import (
	"strings"

	"github.com/ralt/rpmtrust/internal/models"
)

// Verdict is the outcome of checking a signed package
type Verdict int

const (
	// Valid means the package signatures were checked and are good
	Valid Verdict = iota
	// Invalid means the package carries signatures that failed validation
	Invalid
)

// String returns the string representation of Verdict
func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Phrases rpm --checksig prints for signed packages
const (
	badSignaturesPhrase = "SIGNATURES NOT OK"
	signaturesPhrase    = "signatures"
)

// Classify turns rpm --checksig output for packageFile into a verdict. A
// failed signature wins over anything else in the output; output mentioning
// no signatures at all means the package is unsigned. rpm echoes the file
// name on every line, so it is removed before looking for either phrase.
func Classify(packageFile, output string) (Verdict, error) {
	if packageFile != "" {
		output = strings.ReplaceAll(output, packageFile, "")
	}

	if strings.Contains(output, badSignaturesPhrase) {
		return Invalid, nil
	}
	if strings.Contains(output, signaturesPhrase) {
		return Valid, nil
	}
	return Invalid, models.NewError(models.ErrUnsignedFile, packageFile, "")
}
