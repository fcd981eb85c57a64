package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pengelbrecht/poker/internal/poker"
)

// presetItem implements list.Item for estimate preset display.
type presetItem struct {
	preset poker.Preset
}

func (p presetItem) Title() string       { return p.preset.Name + "  " + p.preset.Input }
func (p presetItem) Description() string { return p.preset.Detail }
func (p presetItem) FilterValue() string { return p.preset.Name }

// Picker is the estimate preset selection model.
type Picker struct {
	list     list.Model
	selected *poker.Preset
	quitting bool
}

// Picker styles
var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				MarginBottom(1)

	pickerStyle = lipgloss.NewStyle().
			Padding(1, 2)
)

// NewPicker creates a picker over presets. The preset whose input equals
// current, if any, starts selected.
func NewPicker(presets []poker.Preset, current string) Picker {
	items := make([]list.Item, len(presets))
	start := 0
	for i, p := range presets {
		items[i] = presetItem{preset: p}
		if p.Input == current {
			start = i
		}
	}

	l := list.New(items, list.NewDefaultDelegate(), 60, 20)
	l.Title = "Select an estimate set"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = pickerTitleStyle
	l.Select(start)

	return Picker{list: l}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			p.quitting = true
			return p, tea.Quit
		case "enter":
			if item, ok := p.list.SelectedItem().(presetItem); ok {
				p.selected = &item.preset
				return p, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		p.list.SetSize(msg.Width-4, msg.Height-4)
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

// View implements tea.Model.
func (p Picker) View() string {
	if p.quitting || p.selected != nil {
		return ""
	}
	return pickerStyle.Render(p.list.View())
}

// Selected returns the chosen preset, or nil if none was chosen.
func (p Picker) Selected() *poker.Preset {
	return p.selected
}

// IsQuitting returns true if the user quit without selecting.
func (p Picker) IsQuitting() bool {
	return p.quitting && p.selected == nil
}
