package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// ChatLog is the scrolling session log. Entries are never edited or removed.
type ChatLog struct {
	viewport viewport.Model
	lines    []string
}

// NewChatLog creates an empty log of the given size.
func NewChatLog(width, height int) *ChatLog {
	return &ChatLog{viewport: viewport.New(width, height)}
}

// Append adds line as the newest entry and scrolls to it.
func (c *ChatLog) Append(line string) {
	c.lines = append(c.lines, line)
	c.refresh()
	c.viewport.GotoBottom()
}

// refresh recomputes the viewport content from the entries.
func (c *ChatLog) refresh() {
	wrapped := make([]string, len(c.lines))
	for i, l := range c.lines {
		if c.viewport.Width > 0 {
			l = ansi.Wrap(l, c.viewport.Width, "")
		}
		wrapped[i] = l
	}
	c.viewport.SetContent(strings.Join(wrapped, "\n"))
}

// Resize changes the visible area. A log that was showing its newest entry
// keeps showing it.
func (c *ChatLog) Resize(width, height int) {
	pinned := c.viewport.AtBottom()
	c.viewport.Width = width
	c.viewport.Height = height
	c.refresh()
	if pinned {
		c.viewport.GotoBottom()
	}
}

// Len returns the number of entries.
func (c *ChatLog) Len() int { return len(c.lines) }

// Lines returns a copy of the entries in arrival order.
func (c *ChatLog) Lines() []string {
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// AtBottom reports whether the newest entry is visible.
func (c *ChatLog) AtBottom() bool { return c.viewport.AtBottom() }

// YOffset is the index of the first visible row.
func (c *ChatLog) YOffset() int { return c.viewport.YOffset }

// LineUp scrolls back by n rows.
func (c *ChatLog) LineUp(n int) { c.viewport.LineUp(n) }

// LineDown scrolls forward by n rows.
func (c *ChatLog) LineDown(n int) { c.viewport.LineDown(n) }

// Update forwards msg to the viewport for manual scrolling.
func (c *ChatLog) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	return cmd
}

func (c *ChatLog) View() string {
	return c.viewport.View()
}
