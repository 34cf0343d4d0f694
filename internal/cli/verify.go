package cli

import (
	"context"
	"fmt"

	"github.com/ralt/rpmtrust/internal/models"
	"github.com/ralt/rpmtrust/internal/report"
	"github.com/ralt/rpmtrust/internal/rpmpkg"
	"github.com/ralt/rpmtrust/internal/rpmsig"
	"github.com/ralt/rpmtrust/internal/scanner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	defaults := models.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "verify PATH...",
		Short: "Check the signatures of RPM packages",
		Long: `Checks each package with rpm --checksig. Directories are scanned
recursively for RPM files.

Every package is reported as valid, invalid (signatures present but not
OK), unsigned, or error. The command fails when a package is invalid or
could not be checked, and with --strict also when one is unsigned.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runVerification(cmd, config, args)
		},
	}

	cmd.Flags().IntP("jobs", "j", defaults.Jobs, "Number of packages checked concurrently")
	cmd.Flags().StringP("report", "r", "", "Write a report (.json or .yaml, optionally .gz/.zst/.xz)")
	cmd.Flags().Bool("strict", false, "Fail on unsigned packages too")

	return cmd
}

func runVerification(cmd *cobra.Command, config *models.Config, paths []string) error {
	ctx := cmd.Context()

	sc := scanner.NewFileSystemScanner()
	packages, err := sc.Scan(ctx, paths...)
	if err != nil {
		return &models.TrustError{Type: models.ErrInvalidArgument, Subject: "verify", Err: err}
	}
	if len(packages) == 0 {
		logrus.Warn("No packages found")
		return nil
	}

	verifier := newVerifier(config)
	entries := make([]report.Entry, len(packages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Jobs)
	for i, scanned := range packages {
		g.Go(func() error {
			entry, err := checkPackage(gctx, verifier, scanned.Path)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r := report.New(entries)
	printEntries(cmd, r)

	if config.Report != "" {
		if err := r.Write(config.Report); err != nil {
			return err
		}
		logrus.Infof("Report written to %s", config.Report)
	}

	logrus.WithFields(logrus.Fields{
		"valid":    r.Summary.Valid,
		"invalid":  r.Summary.Invalid,
		"unsigned": r.Summary.Unsigned,
		"errors":   r.Summary.Errors,
	}).Infof("Checked %d packages", r.Summary.Total)

	return reportFailure(r, config.Strict)
}

// checkPackage verifies one package. Only cancellation is returned as an
// error; every other failure is recorded in the entry.
func checkPackage(ctx context.Context, verifier *rpmsig.Verifier, path string) (report.Entry, error) {
	pkg := rpmpkg.Describe(path)

	verdict, err := verifier.Verify(ctx, path)
	switch {
	case err == nil && verdict == rpmsig.Valid:
		return report.NewEntry(pkg, report.StatusValid, nil), nil
	case err == nil:
		return report.NewEntry(pkg, report.StatusInvalid, nil), nil
	case models.IsType(err, models.ErrUnsignedFile):
		return report.NewEntry(pkg, report.StatusUnsigned, nil), nil
	case models.IsType(err, models.ErrCancelled), ctx.Err() != nil:
		return report.Entry{}, err
	default:
		logrus.Warnf("Failed to check %s: %v", path, err)
		return report.NewEntry(pkg, report.StatusError, err), nil
	}
}

func printEntries(cmd *cobra.Command, r *report.Report) {
	for _, e := range r.Entries {
		label := e.File
		if e.Package != "" {
			label = fmt.Sprintf("%s (%s)", e.File, e.Package)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", label, e.Status)
	}
}

func reportFailure(r *report.Report, strict bool) error {
	if !r.Failed(strict) {
		return nil
	}
	return fmt.Errorf("%d of %d packages failed signature verification",
		r.Summary.Invalid+r.Summary.Errors+strictUnsigned(r, strict), r.Summary.Total)
}

func strictUnsigned(r *report.Report, strict bool) int {
	if strict {
		return r.Summary.Unsigned
	}
	return 0
}
