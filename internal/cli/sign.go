package cli

import (
	"fmt"
	"os"

	"github.com/ralt/rpmtrust/internal/models"
	"github.com/ralt/rpmtrust/internal/rpmsig"
	"github.com/ralt/rpmtrust/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewSignCmd creates the sign command
func NewSignCmd() *cobra.Command {
	defaults := models.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "sign PACKAGE...",
		Short: "Sign RPM packages with rpmsign",
		Long: `Signs each package with rpmsign, answering its passphrase prompt.

The passphrase is taken from RPMTRUST_PASSPHRASE, the passphrase entry of
the configuration file, --passphrase-file, or asked on the terminal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if config.Signer == "" {
				return models.NewError(models.ErrInvalidArgument, "--signer is required", "")
			}

			passphrase, err := resolvePassphrase(config)
			if err != nil {
				return err
			}

			signer := newSigner(config)
			for _, pkg := range args {
				if err := signer.Sign(cmd.Context(), config.Signer, passphrase, pkg); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("signer", "s", "", "Key name or e-mail used as _gpg_name")
	cmd.Flags().String("rpmsign", defaults.RPMSignPath, "rpmsign binary")
	cmd.Flags().String("gpg-path", "", "GnuPG home directory used as _gpg_path")
	cmd.Flags().StringP("passphrase-file", "p", "", "File containing the key passphrase")
	cmd.Flags().String("prompt-pattern", rpmsig.DefaultPromptPattern, "Regular expression matching the passphrase prompt")
	cmd.Flags().Duration("prompt-timeout", defaults.PromptTimeout, "How long to wait for the passphrase prompt")
	cmd.Flags().Bool("resign", false, "Replace existing signatures instead of adding one")

	return cmd
}

// resolvePassphrase returns the configured passphrase, or reads it from
// the passphrase file or the terminal
func resolvePassphrase(config *models.Config) (string, error) {
	if config.Passphrase != "" {
		return config.Passphrase, nil
	}
	if config.PassphraseFile != "" {
		passphrase, err := utils.ReadSecretFile(config.PassphraseFile)
		if err != nil {
			return "", &models.TrustError{Type: models.ErrInvalidArgument, Subject: config.PassphraseFile, Err: err}
		}
		return passphrase, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", models.NewError(models.ErrInvalidArgument, "no passphrase given and stdin is not a terminal", "")
	}
	fmt.Fprintf(os.Stderr, "Passphrase for %s: ", config.Signer)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return string(secret), nil
}
