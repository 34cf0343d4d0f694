package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"
)

// ErrTimeout is returned by Expecter when the wait window elapses
var ErrTimeout = errors.New("timed out waiting for output")

// closeGrace bounds how long Close waits for the reader to stop when the
// underlying stream does not unblock.
const closeGrace = time.Second

// Expecter watches an output stream for patterns and writes answers to
// an input stream. Output is read by a single background reader; every
// other method must be called from one goroutine.
type Expecter struct {
	in     io.Writer
	chunks chan []byte
	done   chan struct{}
	exited chan struct{}

	buf  bytes.Buffer
	mark int
	eof  bool
}

// NewExpecter starts reading out and returns an Expecter answering on in
func NewExpecter(out io.Reader, in io.Writer) *Expecter {
	e := &Expecter{
		in:     in,
		chunks: make(chan []byte, 16),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go e.pump(out)
	return e
}

func (e *Expecter) pump(r io.Reader) {
	defer close(e.exited)
	defer close(e.chunks)

	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case e.chunks <- chunk:
			case <-e.done:
				return
			}
		}
		// A pty master reports EIO rather than EOF once the child is gone,
		// so any read error ends the stream.
		if err != nil {
			return
		}
	}
}

// Expect waits until pattern matches the output received since the last
// match. It returns io.EOF if the stream ends first, ErrTimeout when
// timeout elapses and the context error when ctx is done.
func (e *Expecter) Expect(ctx context.Context, pattern *regexp.Regexp, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if loc := pattern.FindIndex(e.buf.Bytes()[e.mark:]); loc != nil {
			e.mark += loc[1]
			return nil
		}
		if e.eof {
			return io.EOF
		}
		select {
		case chunk, ok := <-e.chunks:
			if !ok {
				e.eof = true
				continue
			}
			e.buf.Write(chunk)
		case <-timer.C:
			return ErrTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ExpectEOF waits until the output stream ends
func (e *Expecter) ExpectEOF(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for !e.eof {
		select {
		case chunk, ok := <-e.chunks:
			if !ok {
				e.eof = true
				continue
			}
			e.buf.Write(chunk)
		case <-timer.C:
			return ErrTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Send writes line followed by terminator to the input stream
func (e *Expecter) Send(line, terminator string) error {
	_, err := io.WriteString(e.in, line+terminator)
	return err
}

// EOF reports whether the end of the output stream has been observed
func (e *Expecter) EOF() bool {
	return e.eof
}

// Output returns everything read so far with terminal line endings folded
func (e *Expecter) Output() string {
	for !e.eof {
		select {
		case chunk, ok := <-e.chunks:
			if !ok {
				e.eof = true
				continue
			}
			e.buf.Write(chunk)
			continue
		default:
		}
		break
	}
	return strings.ReplaceAll(e.buf.String(), "\r\n", "\n")
}

// Close stops the background reader. The underlying reader should be
// closed first so a pending read returns.
func (e *Expecter) Close() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
	select {
	case <-e.exited:
	case <-time.After(closeGrace):
	}
}
