package location

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tphakala/birdwatcher/internal/errors"
)

// Permission decides whether the position may be read
type Permission interface {
	Granted(ctx context.Context) (bool, error)
}

// FixedPermission is a permission decided by configuration
type FixedPermission bool

// Granted implements Permission
func (p FixedPermission) Granted(context.Context) (bool, error) {
	return bool(p), nil
}

// PromptPermission asks on a terminal the first time it is consulted and
// remembers the answer for the lifetime of the process. Anything but
// "y" or "yes" counts as a refusal, as does end of input.
//
// The answer is read in the background so a caller can give up waiting
// when its context ends; a later call picks up the same answer.
type PromptPermission struct {
	in  *bufio.Reader
	out io.Writer

	mu       sync.Mutex
	answered chan struct{} // closed once the answer is read, nil until asked
	granted  bool
	err      error
}

// NewPromptPermission reads answers from in and writes the question to out
func NewPromptPermission(in io.Reader, out io.Writer) *PromptPermission {
	return &PromptPermission{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Granted implements Permission. It returns ctx.Err() if ctx ends before
// the user answers.
func (p *PromptPermission) Granted(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.answered == nil {
		if err := ctx.Err(); err != nil {
			p.mu.Unlock()
			return false, err
		}
		if _, err := fmt.Fprint(p.out, "Allow birdwatcher to record your location? [y/N]: "); err != nil {
			p.mu.Unlock()
			return false, err
		}
		p.answered = make(chan struct{})
		go p.readAnswer(p.answered)
	}
	answered := p.answered
	p.mu.Unlock()

	select {
	case <-answered:
		return p.granted, p.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// readAnswer reads one line and closes done; granted and err are only
// written before done is closed
func (p *PromptPermission) readAnswer(done chan struct{}) {
	defer close(done)

	answer, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		p.err = err
		return
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		p.granted = true
	}
}

// NewPermission maps a configured mode ("granted", "denied", "prompt") to
// a Permission. Unknown modes are treated as denied.
func NewPermission(mode string, in io.Reader, out io.Writer) Permission {
	switch strings.ToLower(mode) {
	case "granted":
		return FixedPermission(true)
	case "prompt":
		return NewPromptPermission(in, out)
	default:
		return FixedPermission(false)
	}
}
