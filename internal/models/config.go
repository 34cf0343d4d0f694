package models

import "time"

// Config contains configuration for key management, signing and verification
type Config struct {
	// External tools
	RPMPath     string // rpm binary used for key management and --checksig
	RPMSignPath string // rpmsign binary used for --addsign/--resign
	DBPath      string // Passed to rpm as --dbpath when set
	Root        string // Passed to rpm as --root when set

	// Session
	PromptPattern string        // Regular expression matching the passphrase prompt
	PromptTimeout time.Duration // How long to wait for the passphrase prompt
	Timeout       time.Duration // How long a single rpm invocation may run

	// Signing
	Signer         string // Value for the _gpg_name macro
	GPGPath        string // Value for the _gpg_path macro, empty keeps rpm's default
	Passphrase     string
	PassphraseFile string
	Resign         bool // Replace existing signatures instead of adding one

	// Verification
	Jobs   int    // Number of packages verified concurrently
	Report string // Report output path, compression chosen by extension
	Strict bool   // Treat unsigned packages as failures
}

// DefaultConfig returns the configuration used when nothing else is set
func DefaultConfig() Config {
	return Config{
		RPMPath:       "rpm",
		RPMSignPath:   "rpmsign",
		PromptPattern: `(?i)pass ?phrase[^:\n]*:`,
		PromptTimeout: 30 * time.Second,
		Timeout:       5 * time.Minute,
		Jobs:          4,
	}
}
