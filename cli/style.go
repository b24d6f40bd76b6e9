package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	gherrors "github.com/bangunx/ghup/errors"
	"github.com/bangunx/ghup/probe"
)

// styles renders terminal output. Colors are dropped automatically when
// the writer is not a terminal.
type styles struct {
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	info    lipgloss.Style
	dim     lipgloss.Style
	bold    lipgloss.Style
}

func newStyles(w io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		plain := r.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain}
	}
	return styles{
		success: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true), // Green
		warning: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true), // Yellow
		failure: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),  // Red
		info:    r.NewStyle().Foreground(lipgloss.Color("12")),            // Blue
		dim:     r.NewStyle().Foreground(lipgloss.Color("8")),             // Gray
		bold:    r.NewStyle().Bold(true),
	}
}

func (s styles) ok(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", s.success.Render("✓"), fmt.Sprintf(format, args...))
}

func (s styles) warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", s.warning.Render("⚠"), fmt.Sprintf(format, args...))
}

func (s styles) fail(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", s.failure.Render("✗"), fmt.Sprintf(format, args...))
}

func (s styles) step(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", s.info.Render("→"), fmt.Sprintf(format, args...))
}

func (s styles) renderError(w io.Writer, e *gherrors.CLIError) {
	if e == nil {
		return
	}
	s.fail(w, "%s", e.Message)
	if e.Details != "" && e.Details != e.Message {
		fmt.Fprintln(w, s.dim.Render("  "+e.Details))
	}
	if e.Suggestion != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, e.Suggestion)
	}
}

// outcomeLabel renders a probe outcome such as "auth denied" as
// "Auth Denied", colored by success.
func (s styles) outcomeLabel(o probe.Outcome) string {
	label := cases.Title(language.English).String(string(o))
	if o == probe.Authenticated {
		return s.success.Render(label)
	}
	return s.failure.Render(label)
}
