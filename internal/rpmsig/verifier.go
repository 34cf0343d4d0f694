package rpmsig

import (
	"context"
	"os"

	"github.com/ralt/rpmtrust/internal/models"
	"github.com/ralt/rpmtrust/internal/session"
	"github.com/sirupsen/logrus"
)

// VerifierOptions selects the rpm binary and database used for checks
type VerifierOptions struct {
	RPMPath string
	DBPath  string
	Root    string
}

// Verifier checks package signatures through rpm --checksig
type Verifier struct {
	driver session.Driver
	opts   VerifierOptions
}

// NewVerifier creates a new Verifier that runs rpm through driver
func NewVerifier(driver session.Driver, opts VerifierOptions) *Verifier {
	if opts.RPMPath == "" {
		opts.RPMPath = "rpm"
	}
	return &Verifier{driver: driver, opts: opts}
}

// Verify checks the signatures of packageFile. Unsigned packages are
// reported as an ErrUnsignedFile error, not as a verdict.
func (v *Verifier) Verify(ctx context.Context, packageFile string) (Verdict, error) {
	if _, err := os.Stat(packageFile); err != nil {
		return Invalid, &models.TrustError{Type: models.ErrInvalidArgument, Subject: packageFile, Err: err}
	}

	var args []string
	if v.opts.DBPath != "" {
		args = append(args, "--dbpath", v.opts.DBPath)
	}
	if v.opts.Root != "" {
		args = append(args, "--root", v.opts.Root)
	}
	args = append(args, "--checksig", packageFile)

	res, err := v.driver.Run(ctx, session.Command{Path: v.opts.RPMPath, Args: args, Env: []string{"LC_ALL=C"}})
	if err != nil {
		return Invalid, err
	}

	verdict, err := Classify(packageFile, res.Output)
	if err != nil {
		return verdict, err
	}
	logrus.WithFields(logrus.Fields{
		"package":     packageFile,
		"verdict":     verdict,
		"exit_status": res.ExitStatus,
	}).Debug("Signature checked")
	return verdict, nil
}
