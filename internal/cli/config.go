package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ralt/rpmtrust/internal/keydir"
	"github.com/ralt/rpmtrust/internal/models"
	"github.com/ralt/rpmtrust/internal/rpmsig"
	"github.com/ralt/rpmtrust/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newDriver builds the session driver commands run rpm with
var newDriver = func(config *models.Config) session.Driver {
	return session.NewExecDriver(session.Options{
		PromptTimeout: config.PromptTimeout,
		Timeout:       config.Timeout,
	})
}

// loadConfig merges flags, RPMTRUST_* environment variables and the
// optional configuration file, in that order of precedence
func loadConfig(cmd *cobra.Command) (*models.Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RPMTRUST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, &models.TrustError{
				Type:    models.ErrInvalidArgument,
				Subject: path,
				Err:     fmt.Errorf("failed to read configuration: %w", err),
			}
		}
	}

	config := models.DefaultConfig()
	setString(v, "rpm", &config.RPMPath)
	setString(v, "rpmsign", &config.RPMSignPath)
	setString(v, "dbpath", &config.DBPath)
	setString(v, "root", &config.Root)
	setString(v, "prompt-pattern", &config.PromptPattern)
	setString(v, "signer", &config.Signer)
	setString(v, "gpg-path", &config.GPGPath)
	setString(v, "passphrase", &config.Passphrase)
	setString(v, "passphrase-file", &config.PassphraseFile)
	setString(v, "report", &config.Report)
	if v.IsSet("prompt-timeout") {
		config.PromptTimeout = v.GetDuration("prompt-timeout")
	}
	if v.IsSet("timeout") {
		config.Timeout = v.GetDuration("timeout")
	}
	if v.IsSet("jobs") {
		config.Jobs = v.GetInt("jobs")
	}
	config.Resign = v.GetBool("resign")
	config.Strict = v.GetBool("strict")

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func setString(v *viper.Viper, key string, dst *string) {
	if s := v.GetString(key); s != "" {
		*dst = s
	}
}

func validateConfig(config *models.Config) error {
	if config.RPMPath == "" {
		return models.NewError(models.ErrInvalidArgument, "rpm binary is required", "")
	}
	if config.PromptTimeout <= 0 || config.Timeout <= 0 {
		return models.NewError(models.ErrInvalidArgument, "timeouts must be positive", "")
	}
	if _, err := regexp.Compile(config.PromptPattern); err != nil {
		return &models.TrustError{Type: models.ErrInvalidArgument, Subject: "prompt-pattern", Err: err}
	}
	if config.Jobs < 1 {
		config.Jobs = 1
	}
	return nil
}

func newDirectory(config *models.Config) *keydir.Directory {
	return keydir.New(newDriver(config), keydir.Options{
		RPMPath: config.RPMPath,
		DBPath:  config.DBPath,
		Root:    config.Root,
	})
}

func newSigner(config *models.Config) *rpmsig.Signer {
	return rpmsig.NewSigner(newDriver(config), rpmsig.SignerOptions{
		RPMSignPath:   config.RPMSignPath,
		PromptPattern: regexp.MustCompile(config.PromptPattern),
		GPGPath:       config.GPGPath,
		Resign:        config.Resign,
	})
}

func newVerifier(config *models.Config) *rpmsig.Verifier {
	return rpmsig.NewVerifier(newDriver(config), rpmsig.VerifierOptions{
		RPMPath: config.RPMPath,
		DBPath:  config.DBPath,
		Root:    config.Root,
	})
}
