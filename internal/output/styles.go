// Package output renders previews, rule dumps and summaries.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sys/unix"
)

// Styles holds the lipgloss styles for rendered output.
type Styles struct {
	Header  lipgloss.Style
	Path    lipgloss.Style
	Dim     lipgloss.Style
	Link    lipgloss.Style
	Include lipgloss.Style
	Exclude lipgloss.Style
	Source  lipgloss.Style
}

// NewStyles creates the default color styles.
func NewStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true),
		Path:    lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle().Faint(true),
		Link:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")), // cyan
		Include: lipgloss.NewStyle().Foreground(lipgloss.Color("2")), // green
		Exclude: lipgloss.NewStyle().Foreground(lipgloss.Color("1")), // red
		Source:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// NoStyles returns styles with no coloring.
func NoStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle(),
		Path:    lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Link:    lipgloss.NewStyle(),
		Include: lipgloss.NewStyle(),
		Exclude: lipgloss.NewStyle(),
		Source:  lipgloss.NewStyle(),
	}
}

// IsTerminal checks if the given file descriptor is a terminal.
func IsTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}

// StdoutIsTerminal returns true if stdout is a terminal.
func StdoutIsTerminal() bool {
	return IsTerminal(os.Stdout.Fd())
}
