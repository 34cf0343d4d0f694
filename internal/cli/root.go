package cli

import (
	"github.com/ralt/rpmtrust/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// version is set via ldflags
var version = "dev"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	defaults := models.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "rpmtrust",
		Short: "Manage trusted keys and signatures of RPM packages",
		Long: `Rpmtrust drives rpm and rpmsign to manage the public keys the RPM
database trusts, sign packages with a passphrase-protected key and check
package signatures.

Settings can also be given as RPMTRUST_* environment variables (for
example RPMTRUST_PASSPHRASE or RPMTRUST_DBPATH) or in a YAML file passed
with --config.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringP("config", "c", "", "Configuration file (YAML)")
	flags.String("rpm", defaults.RPMPath, "rpm binary")
	flags.String("dbpath", "", "RPM database directory passed to rpm --dbpath")
	flags.String("root", "", "Root directory passed to rpm --root")
	flags.Duration("timeout", defaults.Timeout, "Maximum run time of a single rpm invocation")

	// Add subcommands
	rootCmd.AddCommand(NewImportKeyCmd())
	rootCmd.AddCommand(NewRemoveKeyCmd())
	rootCmd.AddCommand(NewListKeysCmd())
	rootCmd.AddCommand(NewSignCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewShowReportCmd())

	return rootCmd
}
