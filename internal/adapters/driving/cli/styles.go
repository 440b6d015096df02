package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme defines the colour palette for command output.
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme yields unstyled output.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		plain := lipgloss.NewStyle()
		return &Styles{Title: plain, Label: plain, Muted: plain, Success: plain, Warning: plain}
	}
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Label:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(theme.Warning),
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printer writes styled output, colouring only on terminals.
type printer struct {
	w  io.Writer
	st *Styles
}

func newPrinter(w io.Writer) *printer {
	var theme *Theme
	if isTerminal(w) {
		theme = DefaultTheme()
	}
	return &printer{w: w, st: NewStyles(theme)}
}

func (p *printer) title(format string, args ...any) {
	fmt.Fprintln(p.w, p.st.Title.Render(fmt.Sprintf(format, args...)))
}

func (p *printer) field(label string, value any) {
	fmt.Fprintf(p.w, "  %s %v\n", p.st.Label.Render(fmt.Sprintf("%-18s", label)), value)
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) muted(format string, args ...any) {
	fmt.Fprintln(p.w, p.st.Muted.Render(fmt.Sprintf(format, args...)))
}

func (p *printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, p.st.Success.Render(fmt.Sprintf(format, args...)))
}

func (p *printer) warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.st.Warning.Render(fmt.Sprintf(format, args...)))
}
