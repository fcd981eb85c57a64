package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// Control is a widget that can be switched off while a request is
// outstanding.
type Control interface {
	SetEnabled(enabled bool)
	Enabled() bool
}

// ChatInput is the multi-line chat composer.
type ChatInput struct {
	area     textarea.Model
	disabled bool
}

// NewChatInput creates a focused composer.
func NewChatInput(width, height int) *ChatInput {
	ta := textarea.New()
	ta.Placeholder = "Write a message… (alt+enter or ctrl+s to send)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.Prompt = "┃ "
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.Focus()
	return &ChatInput{area: ta}
}

// Value returns the text being composed.
func (c *ChatInput) Value() string { return c.area.Value() }

// SetValue replaces the text being composed.
func (c *ChatInput) SetValue(s string) { c.area.SetValue(s) }

// Reset clears the composer.
func (c *ChatInput) Reset() { c.area.Reset() }

// SetEnabled implements Control. A disabled composer ignores keys.
func (c *ChatInput) SetEnabled(enabled bool) {
	c.disabled = !enabled
}

// Enabled implements Control.
func (c *ChatInput) Enabled() bool { return !c.disabled }

// Focus gives the composer the cursor.
func (c *ChatInput) Focus() tea.Cmd { return c.area.Focus() }

// Blur removes the cursor.
func (c *ChatInput) Blur() { c.area.Blur() }

// Focused reports whether the composer has the cursor.
func (c *ChatInput) Focused() bool { return c.area.Focused() }

// Resize changes the composer size.
func (c *ChatInput) Resize(width, height int) {
	c.area.SetWidth(width)
	c.area.SetHeight(height)
}

// Update forwards msg to the textarea unless the composer is disabled.
func (c *ChatInput) Update(msg tea.Msg) tea.Cmd {
	if c.disabled {
		if _, ok := msg.(tea.KeyMsg); ok {
			return nil
		}
	}
	var cmd tea.Cmd
	c.area, cmd = c.area.Update(msg)
	return cmd
}

func (c *ChatInput) View() string {
	return c.area.View()
}
