package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Layout constants
const (
	itemPanelWidth = 36 // Fixed width for the item panel, borders included
	inputHeight    = 3
	minHeight      = 6
	minChatWidth   = 20
)

// Color palette
var (
	primaryColor   = lipgloss.Color("205") // Pink
	secondaryColor = lipgloss.Color("86")  // Cyan
	mutedColor     = lipgloss.Color("241") // Gray
	successColor   = lipgloss.Color("78")  // Green
	warningColor   = lipgloss.Color("214") // Orange
	errorColor     = lipgloss.Color("196") // Red
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor)

	footerStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	// Status indicators
	liveStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	sendingStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)
)

// panelFrame is the horizontal and vertical space taken by a panel's border
// and padding.
func panelFrame() (int, int) {
	return panelStyle.GetHorizontalFrameSize(), panelStyle.GetVerticalFrameSize()
}

// mainHeight is the outer height of the item and chat panels.
func (m Model) mainHeight() int {
	_, fv := panelFrame()
	// header + footer + slider panel + input panel
	h := m.height - 2 - (1 + fv) - (inputHeight + fv)
	if h < minHeight {
		h = minHeight
	}
	return h
}

func (m Model) chatWidth() int {
	w := m.width - itemPanelWidth
	if w < minChatWidth {
		w = minChatWidth
	}
	return w
}

// resize recomputes component sizes from the window size.
func (m *Model) resize() {
	fh, fv := panelFrame()
	inner := m.mainHeight() - fv - 1 // panel title row

	m.items.Resize(itemPanelWidth-fh, inner)
	m.chat.Resize(m.chatWidth()-fh, inner)
	m.input.Resize(m.width-fh, inputHeight)
	m.help.Width = m.width
}

func (m Model) panel(title string, focused bool, width, height int, body string) string {
	style := panelStyle
	if focused {
		style = style.BorderForeground(primaryColor)
	}
	content := lipgloss.JoinVertical(lipgloss.Left, panelTitleStyle.Render(title), body)
	return style.
		Width(width - style.GetHorizontalBorderSize()).
		Height(height - style.GetVerticalBorderSize()).
		Render(content)
}

// renderHeader renders the session code and the connection state.
func (m Model) renderHeader() string {
	left := titleStyle.Render(fmt.Sprintf("♠ poker: %s", m.session)) +
		lipgloss.NewStyle().Foreground(mutedColor).Render("  as "+sanitize(m.author))

	var status string
	switch {
	case m.pushClosed:
		status = offlineStyle.Render("■ OFFLINE")
	case m.dispatcher.State() == Sending:
		status = sendingStyle.Render("◐ SENDING")
	default:
		status = liveStyle.Render("● LIVE")
	}

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if padding < 0 {
		padding = 0
	}

	return headerStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + status)
}

// renderMainContent renders the item and chat panels side by side.
func (m Model) renderMainContent() string {
	h := m.mainHeight()
	items := m.panel(fmt.Sprintf("Items (%d)", m.items.Len()), m.focus == focusItems, itemPanelWidth, h, m.items.View())
	chat := m.panel("Chat", false, m.chatWidth(), h, m.chat.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, items, chat)
}

// renderSlider renders the estimate slider for the selected item.
func (m Model) renderSlider() string {
	fh, _ := panelFrame()
	title := "Estimate"
	if item, ok := m.items.Selected(); ok {
		title = "Estimate " + ansi.Truncate(sanitize(item.Title), 30, "…")
	}
	style := panelStyle
	if m.focus == focusSlider {
		style = style.BorderForeground(primaryColor)
	}
	line := panelTitleStyle.Render(title) + "  " + m.slider.View(m.width-fh-lipgloss.Width(title)-2)
	return style.Width(m.width - style.GetHorizontalBorderSize()).Render(line)
}

// renderInput renders the chat composer.
func (m Model) renderInput() string {
	style := panelStyle
	if m.focus == focusInput {
		style = style.BorderForeground(primaryColor)
	}
	return style.Width(m.width - style.GetHorizontalBorderSize()).Render(m.input.View())
}

// renderFooter renders the short key help.
func (m Model) renderFooter() string {
	return footerStyle.Width(m.width).Render(m.help.View(m.keys))
}

// Help overlay styles
var (
	helpOverlayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(1, 2).
				Background(lipgloss.Color("235"))

	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true).
			Width(14)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// renderHelpOverlay renders a help overlay on top of the main view.
func (m Model) renderHelpOverlay(background string) string {
	title := helpTitleStyle.Render("Keyboard Shortcuts")

	var lines []string
	for _, column := range m.keys.FullHelp() {
		for _, b := range column {
			h := b.Help()
			lines = append(lines, helpKeyStyle.Render(h.Key)+helpDescStyle.Render(h.Desc))
		}
	}
	lines = append(lines, "", helpDescStyle.Render("enter adds a line break; it is ignored in an empty message"))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	help := helpOverlayStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))

	x := (m.width - lipgloss.Width(help)) / 2
	y := (m.height - lipgloss.Height(help)) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return placeOverlay(x, y, help, background)
}

// placeOverlay places a foreground string on top of a background at the given position.
func placeOverlay(x, y int, fg, bg string) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	for len(bgLines) < y+len(fgLines) {
		bgLines = append(bgLines, "")
	}

	for i, fgLine := range fgLines {
		bgLine := bgLines[y+i]
		if w := ansi.StringWidth(bgLine); w < x {
			bgLine += strings.Repeat(" ", x-w)
		}

		before := ansi.Truncate(bgLine, x, "")
		after := ""
		if end := x + ansi.StringWidth(fgLine); ansi.StringWidth(bgLine) > end {
			after = ansi.TruncateLeft(bgLine, end, "")
		}
		bgLines[y+i] = before + fgLine + after
	}

	return strings.Join(bgLines, "\n")
}
