// Package sessiontest provides a scripted session.Driver for tests that
// must not spawn real processes.
package sessiontest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ralt/rpmtrust/internal/session"
)

// Call records one invocation made through the Driver
type Call struct {
	Command     session.Command
	Interactive bool
	Prompt      session.Prompt
}

// Driver replays scripted responses in order and records every call
type Driver struct {
	mu        sync.Mutex
	calls     []Call
	responses []response
}

type response struct {
	result *session.Result
	err    error
}

// New returns a Driver with no scripted responses
func New() *Driver {
	return &Driver{}
}

// Respond queues a finished session with the given output and exit status
func (d *Driver) Respond(output string, exitStatus int) *Driver {
	return d.RespondResult(&session.Result{Output: output, ExitStatus: exitStatus, EOF: true, PromptSeen: true})
}

// RespondResult queues an arbitrary result
func (d *Driver) RespondResult(result *session.Result) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses = append(d.responses, response{result: result})
	return d
}

// Fail queues an error
func (d *Driver) Fail(err error) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses = append(d.responses, response{err: err})
	return d
}

// Calls returns the calls made so far
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Run implements session.Driver
func (d *Driver) Run(ctx context.Context, cmd session.Command) (*session.Result, error) {
	return d.next(ctx, Call{Command: cmd})
}

// RunInteractive implements session.Driver
func (d *Driver) RunInteractive(ctx context.Context, cmd session.Command, prompt session.Prompt) (*session.Result, error) {
	return d.next(ctx, Call{Command: cmd, Interactive: true, Prompt: prompt})
}

func (d *Driver) next(ctx context.Context, call Call) (*session.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, call)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(d.responses) == 0 {
		return nil, fmt.Errorf("sessiontest: unexpected command %s", call.Command)
	}
	r := d.responses[0]
	d.responses = d.responses[1:]
	return r.result, r.err
}
