// Package pager wraps long-running output (status listings) in a pager
// process the way `git` itself does for long
// listings: it prefers $GIT_SUBREPO_PAGER, falls back to $PAGER, then to
// "less -FRX", and is bypassed entirely when stdout is not a terminal
// (piped into another command, redirected to a file, or running in CI).
package pager

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
)

// Pager is a started pager process. Close waits for it to exit after
// closing its stdin, flushing everything written to Writer.
type Pager struct {
	Writer io.Writer

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	active bool
}

// Start launches a pager wired to out (normally os.Stdout) unless out is
// not a terminal, in which case it returns a no-op Pager that writes
// straight through.
func Start(out *os.File) (*Pager, error) {
	if !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
		return &Pager{Writer: out}, nil
	}

	command := resolveCommand()
	if command == "" {
		return &Pager{Writer: out}, nil
	}

	cmd := exec.Command("sh", "-c", command)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &Pager{Writer: stdin, cmd: cmd, stdin: stdin, active: true}, nil
}

// Close flushes and waits for the pager to exit. It is a no-op for the
// passthrough Pager Start returns when output is not a terminal.
func (p *Pager) Close() error {
	if !p.active {
		return nil
	}
	if err := p.stdin.Close(); err != nil {
		return err
	}
	return p.cmd.Wait()
}

func resolveCommand() string {
	if v := strings.TrimSpace(os.Getenv("GIT_SUBREPO_PAGER")); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("PAGER")); v != "" {
		return v
	}
	return "less -FRX"
}
