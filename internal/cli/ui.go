package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	commentaryStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1).
			Width(96)
)

func printTitle(w io.Writer, s string) { fmt.Fprintln(w, titleStyle.Render(s)) }

func printPath(w io.Writer, p string) { fmt.Fprintln(w, "  "+pathStyle.Render(p)) }

func printWarn(w io.Writer, s string) { fmt.Fprintln(w, warnStyle.Render(s)) }

// PrintError renders a fatal error for main.
func PrintError(w io.Writer, err error) { fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error())) }

func printCommentary(w io.Writer, s string) {
	fmt.Fprintln(w, commentaryStyle.Render(s))
}
