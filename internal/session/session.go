// Package session drives interactive command-line tools: it spawns a
// process on a pseudo terminal, watches its combined output for prompts,
// answers them, and reports the captured output and exit status once the
// process is done.
package session

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Command describes one invocation of an external tool
type Command struct {
	Path string
	Args []string
	Env  []string // Added to the current environment
	Dir  string
}

// String returns the command line, quoting arguments that need it
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Path)
	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'\\") {
			arg = strconv.Quote(arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// Prompt is a pattern to wait for and the secret to answer it with
type Prompt struct {
	Pattern *regexp.Regexp
	Secret  string
}

// Result is the outcome of one session
type Result struct {
	Output     string
	ExitStatus int
	EOF        bool // End of output was observed
	PromptSeen bool // Only meaningful for interactive sessions
	Duration   time.Duration
}

// Success reports whether the process exited with status 0
func (r *Result) Success() bool {
	return r.EOF && r.ExitStatus == 0
}

// Driver runs external commands to completion
type Driver interface {
	// Run spawns the command and waits until its output ends
	Run(ctx context.Context, cmd Command) (*Result, error)

	// RunInteractive spawns the command, waits for the prompt, answers it
	// with the secret and then waits until the output ends
	RunInteractive(ctx context.Context, cmd Command, prompt Prompt) (*Result, error)
}

// Options bound how long a session may take
type Options struct {
	PromptTimeout  time.Duration
	Timeout        time.Duration
	LineTerminator string
}

// DefaultOptions returns the options used for zero fields
func DefaultOptions() Options {
	return Options{
		PromptTimeout:  30 * time.Second,
		Timeout:        5 * time.Minute,
		LineTerminator: "\n",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PromptTimeout <= 0 {
		o.PromptTimeout = def.PromptTimeout
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.LineTerminator == "" {
		o.LineTerminator = def.LineTerminator
	}
	return o
}
