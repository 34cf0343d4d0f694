package cli

import (
	"github.com/ralt/rpmtrust/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewShowReportCmd creates the show-report command
func NewShowReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-report REPORT",
		Short: "Print a report written by verify",
		Long: `Prints the verdicts stored in a report written by verify --report.
The format and compression are taken from the file name, as when writing.
The command fails under the same conditions verify did.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strict, _ := cmd.Flags().GetBool("strict")

			r, err := report.Read(args[0])
			if err != nil {
				return err
			}
			printEntries(cmd, r)

			logrus.WithFields(logrus.Fields{
				"generated_at": r.GeneratedAt,
				"valid":        r.Summary.Valid,
				"invalid":      r.Summary.Invalid,
				"unsigned":     r.Summary.Unsigned,
				"errors":       r.Summary.Errors,
			}).Infof("Report covers %d packages", r.Summary.Total)

			return reportFailure(r, strict)
		},
	}

	cmd.Flags().Bool("strict", false, "Fail on unsigned packages too")

	return cmd
}
