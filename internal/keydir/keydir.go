// Package keydir manages the public keys rpm trusts: importing key files,
// listing the installed gpg-pubkey records and removing them by
// fingerprint.
//
// Installed keys are named gpg-pubkey-<short id>-<creation date>, where the
// short id is the last 8 hex digits of the key fingerprint. A fingerprint is
// therefore matched loosely: a record matches when it contains the
// fingerprint's last 8 characters. Two keys sharing those 8 characters
// cannot be told apart; only the first listed record is ever removed.
package keydir

import (
	"context"
	"fmt"
	"strings"

	"github.com/ralt/rpmtrust/internal/models"
	"github.com/ralt/rpmtrust/internal/session"
	"github.com/sirupsen/logrus"
)

// ShortIDLength is the number of trailing fingerprint characters rpm keeps
// in installed key names
const ShortIDLength = 8

// Options selects the rpm binary and database
type Options struct {
	RPMPath string
	DBPath  string
	Root    string
}

// Directory is the rpm key database, queried live on every call
type Directory struct {
	driver session.Driver
	opts   Options
}

// New creates a Directory that runs rpm through driver
func New(driver session.Driver, opts Options) *Directory {
	if opts.RPMPath == "" {
		opts.RPMPath = "rpm"
	}
	return &Directory{driver: driver, opts: opts}
}

// Import imports keyFile as a trusted public key
func (d *Directory) Import(ctx context.Context, keyFile string) error {
	res, err := d.driver.Run(ctx, d.command("--import", keyFile))
	if err != nil {
		return err
	}
	if !res.Success() {
		return models.NewError(models.ErrKeyImport, keyFile, res.Output)
	}
	logrus.WithField("key_file", keyFile).Info("Public key imported")
	return nil
}

// List returns the installed public key identifiers in rpm's order
func (d *Directory) List(ctx context.Context) ([]string, error) {
	res, err := d.driver.Run(ctx, d.command("-qa", "gpg-pubkey*"))
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, models.NewError(models.ErrKeyQuery, "gpg-pubkey*", res.Output)
	}

	var keys []string
	for _, line := range strings.Split(res.Output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			keys = append(keys, line)
		}
	}
	return keys, nil
}

// Find returns the first installed key matching fingerprint
func (d *Directory) Find(ctx context.Context, fingerprint string) (string, error) {
	if fingerprint == "" {
		return "", models.NewError(models.ErrInvalidArgument, "fingerprint is empty", "")
	}

	keys, err := d.List(ctx)
	if err != nil {
		return "", err
	}
	for _, key := range keys {
		if Matches(key, fingerprint) {
			return key, nil
		}
	}
	return "", models.NewError(models.ErrKeyNotFound, fingerprint, "")
}

// Remove erases the first installed key matching fingerprint
func (d *Directory) Remove(ctx context.Context, fingerprint string) error {
	key, err := d.Find(ctx, fingerprint)
	if err != nil {
		return err
	}

	res, err := d.driver.Run(ctx, d.command("-e", key))
	if err != nil {
		return err
	}
	if !res.Success() {
		return models.NewError(models.ErrKeyRemove, key, res.Output)
	}

	logrus.WithFields(logrus.Fields{
		"fingerprint": fingerprint,
		"key":         key,
	}).Info("Public key removed")
	return nil
}

// Matches reports whether an installed key identifier belongs to fingerprint
func Matches(identifier, fingerprint string) bool {
	if fingerprint == "" {
		return false
	}
	return strings.Contains(identifier, ShortID(fingerprint))
}

// ShortID returns the trailing characters of fingerprint rpm uses in key names
func ShortID(fingerprint string) string {
	if len(fingerprint) <= ShortIDLength {
		return fingerprint
	}
	return fingerprint[len(fingerprint)-ShortIDLength:]
}

func (d *Directory) command(args ...string) session.Command {
	var full []string
	if d.opts.DBPath != "" {
		full = append(full, "--dbpath", d.opts.DBPath)
	}
	if d.opts.Root != "" {
		full = append(full, "--root", d.opts.Root)
	}
	full = append(full, args...)
	return session.Command{Path: d.opts.RPMPath, Args: full, Env: []string{"LC_ALL=C"}}
}

// String describes the database the Directory works on
func (d *Directory) String() string {
	if d.opts.DBPath != "" {
		return fmt.Sprintf("%s (%s)", d.opts.RPMPath, d.opts.DBPath)
	}
	return d.opts.RPMPath
}
