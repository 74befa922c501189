package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// console writes labeled messages. Labels are colored only when the
// destination is a terminal.
type console struct {
	out io.Writer
	err io.Writer

	errorStyle lipgloss.Style
	warnStyle  lipgloss.Style
	okStyle    lipgloss.Style
}

func newConsole(stdout, stderr io.Writer) *console {
	r := lipgloss.NewRenderer(stderr)
	return &console{
		out:        stdout,
		err:        stderr,
		errorStyle: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warnStyle:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		okStyle:    r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// label renders a "Warning:" or "Error:" prefix.
func (c *console) label(s string) string {
	if s == "Error:" {
		return c.errorStyle.Render(s)
	}
	return c.warnStyle.Render(s)
}

func (c *console) errorf(format string, args ...any) {
	fmt.Fprintf(c.err, "%s %s\n", c.errorStyle.Render("Error:"), fmt.Sprintf(format, args...))
}

func (c *console) warnf(format string, args ...any) {
	fmt.Fprintf(c.err, "%s %s\n", c.warnStyle.Render("Warning:"), fmt.Sprintf(format, args...))
}

func (c *console) successf(format string, args ...any) {
	fmt.Fprintln(c.err, c.okStyle.Render(fmt.Sprintf(format, args...)))
}
