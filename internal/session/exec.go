package session

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
	"github.com/ralt/rpmtrust/internal/models"
	"github.com/sirupsen/logrus"
)

// redacted replaces a secret echoed back by the terminal
const redacted = "********"

// ExecDriver implements Driver by spawning real processes on a pseudo
// terminal, the way a human operator would run them
type ExecDriver struct {
	opts Options
}

// NewExecDriver creates a new driver, zero option fields take their defaults
func NewExecDriver(opts Options) *ExecDriver {
	return &ExecDriver{opts: opts.withDefaults()}
}

// Run spawns the command and waits until its output ends
func (d *ExecDriver) Run(ctx context.Context, cmd Command) (*Result, error) {
	return d.run(ctx, cmd, nil)
}

// RunInteractive spawns the command, answers the prompt and waits until its output ends
func (d *ExecDriver) RunInteractive(ctx context.Context, cmd Command, prompt Prompt) (*Result, error) {
	if prompt.Pattern == nil {
		return nil, models.NewError(models.ErrInvalidArgument, "prompt pattern is required", "")
	}
	return d.run(ctx, cmd, &prompt)
}

func (d *ExecDriver) run(ctx context.Context, c Command, prompt *Prompt) (*Result, error) {
	subject := c.String()
	if err := ctx.Err(); err != nil {
		return nil, &models.TrustError{Type: models.ErrCancelled, Subject: subject, Err: err}
	}

	log := logrus.WithField("command", subject)
	started := time.Now()
	deadline := started.Add(d.opts.Timeout)

	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, &models.TrustError{Type: models.ErrProcessSpawn, Subject: subject, Err: err}
	}
	log.Debug("Session started")

	exp := NewExpecter(ptmx, ptmx)
	result := &Result{}
	// Set once the secret is sent, a terminal with echo on prints it back
	secret := ""

	if prompt != nil {
		err := exp.Expect(ctx, prompt.Pattern, minDuration(d.opts.PromptTimeout, time.Until(deadline)))
		switch {
		case err == nil:
			result.PromptSeen = true
			log.Debug("Prompt seen, sending secret")
			if err := exp.Send(prompt.Secret, d.opts.LineTerminator); err != nil {
				output := redact(d.abort(cmd, ptmx, exp), prompt.Secret)
				return nil, &models.TrustError{Type: models.ErrSessionIO, Subject: subject, Output: output, Err: err}
			}
			secret = prompt.Secret
		case errors.Is(err, io.EOF):
			log.Debug("Output ended before prompt appeared")
		case errors.Is(err, ErrTimeout):
			output := d.abort(cmd, ptmx, exp)
			return nil, models.NewError(models.ErrPromptTimeout, subject, output)
		default:
			output := d.abort(cmd, ptmx, exp)
			return nil, &models.TrustError{Type: models.ErrCancelled, Subject: subject, Output: output, Err: err}
		}
	}

	if err := exp.ExpectEOF(ctx, time.Until(deadline)); err != nil {
		output := redact(d.abort(cmd, ptmx, exp), secret)
		if errors.Is(err, ErrTimeout) {
			return nil, models.NewError(models.ErrSessionTimeout, subject, output)
		}
		return nil, &models.TrustError{Type: models.ErrCancelled, Subject: subject, Output: output, Err: err}
	}

	// Output has ended, the exit status is now final
	waitErr := cmd.Wait()
	ptmx.Close()
	exp.Close()

	result.Output = redact(exp.Output(), secret)
	result.EOF = true
	result.ExitStatus = exitStatus(cmd, waitErr)
	result.Duration = time.Since(started)

	log.WithFields(logrus.Fields{
		"exit_status": result.ExitStatus,
		"duration":    result.Duration,
	}).Debug("Session finished")

	return result, nil
}

// abort kills the process group, reaps the child and returns the output
// collected so far
func (d *ExecDriver) abort(cmd *exec.Cmd, ptmx *os.File, exp *Expecter) string {
	if err := killProcess(cmd); err != nil {
		logrus.Debugf("Failed to kill %s: %v", cmd.Path, err)
	}
	ptmx.Close()
	cmd.Wait()
	exp.Close()
	return exp.Output()
}

// redact hides every occurrence of secret in output
func redact(output, secret string) string {
	if secret == "" {
		return output
	}
	return strings.ReplaceAll(output, secret, redacted)
}

func exitStatus(cmd *exec.Cmd, waitErr error) int {
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	if waitErr != nil {
		logrus.Warnf("Waiting for %s failed: %v", cmd.Path, waitErr)
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
