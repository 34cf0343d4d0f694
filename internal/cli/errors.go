package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ralt/rpmtrust/internal/models"
)

// SignalContext returns a context that is canceled on SIGINT or SIGTERM
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// FormatError converts errors to user-friendly messages
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var te *models.TrustError
	if !errors.As(err, &te) {
		return fmt.Sprintf("Error: %v", err)
	}

	switch te.Type {
	case models.ErrProcessSpawn:
		return fmt.Sprintf("Error: could not run %s (is rpm installed?): %v", te.Subject, te.Err)
	case models.ErrPromptTimeout:
		return fmt.Sprintf("Error: no passphrase prompt from %s (check --prompt-pattern)", te.Subject)
	case models.ErrSessionIO:
		return fmt.Sprintf("Error: lost the terminal of %s: %v", te.Subject, te.Err)
	case models.ErrKeyNotFound:
		return fmt.Sprintf("Error: no installed key matches %s", te.Subject)
	case models.ErrUnsignedFile:
		return fmt.Sprintf("Error: %s is not signed", te.Subject)
	case models.ErrCancelled:
		return "Error: operation canceled"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
