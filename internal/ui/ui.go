// Package ui renders the colored status lines git-subrepo prints for
// commands, warnings, errors and rebase-recovery scripts. It is a thin
// wrapper over lipgloss styles, one style variable per message kind.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	recoveryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Title renders a bold section heading, e.g. "git-subrepo".
func Title(s string) string { return titleStyle.Render(s) }

// Info renders a neutral informational line.
func Info(s string) string { return infoStyle.Render(s) }

// Warn renders a warning line.
func Warn(s string) string { return warnStyle.Render(s) }

// Err renders an error line, always prefixed "git-subrepo:".
func Err(s string) string { return errStyle.Render("git-subrepo: " + s) }

// Success renders a success line.
func Success(s string) string { return successStyle.Render(s) }

// Recovery renders one line of a rebase-conflict recovery script.
func Recovery(s string) string { return recoveryStyle.Render(s) }

// Say writes an Info-styled line to w, followed by a newline.
func Say(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Info(fmt.Sprintf(format, args...)))
}

// Fail writes an Err-styled line to stderr, followed by a newline.
func Fail(format string, args ...any) {
	fmt.Fprintln(os.Stderr, Err(fmt.Sprintf(format, args...)))
}
