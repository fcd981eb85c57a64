package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	chatAuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor)

	errorLineStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	noticeLineStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)

// sanitize turns pushed or typed text into plain content. Escape sequences
// are removed and control characters other than newline and tab are dropped.
func sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		}
		return r
	}, s)
}

// FormatChat renders a chat line as "author: text". The author is kept on
// one line.
func FormatChat(author, text string) string {
	name := strings.NewReplacer("\n", " ", "\t", " ").Replace(sanitize(author))
	return chatAuthorStyle.Render(name+":") + " " + sanitize(text)
}

// FormatError renders a failed send so it stands apart from chat lines.
func FormatError(statusText string) string {
	return errorLineStyle.Render("[Error: " + sanitize(statusText) + "]")
}

// FormatNotice renders a local status line.
func FormatNotice(text string) string {
	return noticeLineStyle.Render("[" + sanitize(text) + "]")
}
