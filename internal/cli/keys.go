package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ralt/rpmtrust/internal/keydir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewImportKeyCmd creates the import-key command
func NewImportKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-key KEY_FILE...",
		Short: "Import public keys as trusted for RPM packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir := newDirectory(config)

			for _, keyFile := range args {
				if keys, err := keydir.ReadKeyFile(keyFile); err != nil {
					logrus.Warnf("Could not read %s before import: %v", keyFile, err)
				} else {
					for _, key := range keys {
						logrus.WithFields(logrus.Fields{
							"fingerprint": key.Fingerprint,
							"user_ids":    strings.Join(key.UserIDs, ", "),
						}).Infof("Importing key gpg-pubkey-%s", key.ShortID())
					}
				}

				if err := dir.Import(cmd.Context(), keyFile); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// NewRemoveKeyCmd creates the remove-key command
func NewRemoveKeyCmd() *cobra.Command {
	var keyFiles []string

	cmd := &cobra.Command{
		Use:   "remove-key [FINGERPRINT...]",
		Short: "Remove trusted public keys from the RPM database",
		Long: `Removes the installed public key whose name contains the last 8
characters of each fingerprint. Fingerprints can also be taken from key
files with --key-file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var fingerprints []string
			for _, arg := range args {
				// rpm names keys with lower-case hex
				fingerprints = append(fingerprints, strings.ToLower(arg))
			}
			for _, keyFile := range keyFiles {
				keys, err := keydir.ReadKeyFile(keyFile)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", keyFile, err)
				}
				for _, key := range keys {
					fingerprints = append(fingerprints, key.Fingerprint)
				}
			}
			if len(fingerprints) == 0 {
				return fmt.Errorf("no fingerprint given")
			}

			dir := newDirectory(config)
			var errs []error
			for _, fingerprint := range fingerprints {
				if err := dir.Remove(cmd.Context(), fingerprint); err != nil {
					logrus.Errorf("Failed to remove %s: %v", fingerprint, err)
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringSliceVarP(&keyFiles, "key-file", "k", nil, "Remove the keys contained in this key file")

	return cmd
}

// NewListKeysCmd creates the list-keys command
func NewListKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-keys",
		Short: "List the public keys trusted by the RPM database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			dir := newDirectory(config)
			keys, err := dir.List(cmd.Context())
			if err != nil {
				return err
			}

			logrus.Debugf("%d keys installed in %s", len(keys), dir)
			for _, key := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}
