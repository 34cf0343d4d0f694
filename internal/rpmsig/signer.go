// Package rpmsig signs RPM packages with rpmsign and checks their
// signatures with rpm --checksig.
package rpmsig

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/ralt/rpmtrust/internal/models"
	"github.com/ralt/rpmtrust/internal/session"
	"github.com/sirupsen/logrus"
)

// DefaultPromptPattern matches the passphrase prompts of rpmsign and of
// gpg's terminal pinentry
const DefaultPromptPattern = `(?i)pass ?phrase[^:\n]*:`

// SignerOptions configures how rpmsign is run
type SignerOptions struct {
	RPMSignPath   string
	PromptPattern *regexp.Regexp
	GPGPath       string // Directory passed as the _gpg_path macro
	Resign        bool   // Replace existing signatures
}

// Signer signs packages through rpmsign
type Signer struct {
	driver session.Driver
	opts   SignerOptions
}

// NewSigner creates a new Signer that runs rpmsign through driver
func NewSigner(driver session.Driver, opts SignerOptions) *Signer {
	if opts.RPMSignPath == "" {
		opts.RPMSignPath = "rpmsign"
	}
	if opts.PromptPattern == nil {
		opts.PromptPattern = regexp.MustCompile(DefaultPromptPattern)
	}
	return &Signer{driver: driver, opts: opts}
}

// Sign signs packageFile as identity, answering the passphrase prompt with
// passphrase
func (s *Signer) Sign(ctx context.Context, identity, passphrase, packageFile string) error {
	if identity == "" {
		return models.NewError(models.ErrInvalidArgument, "signer identity is empty", "")
	}
	if _, err := os.Stat(packageFile); err != nil {
		return &models.TrustError{Type: models.ErrInvalidArgument, Subject: packageFile, Err: err}
	}

	res, err := s.driver.RunInteractive(ctx, s.command(identity, packageFile), session.Prompt{
		Pattern: s.opts.PromptPattern,
		Secret:  passphrase,
	})
	if err != nil {
		return err
	}
	if !res.Success() {
		return models.NewError(models.ErrSigning, packageFile, res.Output)
	}
	if !res.PromptSeen {
		logrus.Debugf("rpmsign did not ask for a passphrase while signing %s", packageFile)
	}

	logrus.WithFields(logrus.Fields{
		"package": packageFile,
		"signer":  identity,
	}).Info("Package signed")
	return nil
}

func (s *Signer) command(identity, packageFile string) session.Command {
	args := []string{"--define", fmt.Sprintf("_gpg_name %s", identity)}
	if s.opts.GPGPath != "" {
		args = append(args, "--define", fmt.Sprintf("_gpg_path %s", s.opts.GPGPath))
	}
	if s.opts.Resign {
		args = append(args, "--resign", packageFile)
	} else {
		args = append(args, "--addsign", packageFile)
	}
	return session.Command{Path: s.opts.RPMSignPath, Args: args, Env: []string{"LC_ALL=C"}}
}
