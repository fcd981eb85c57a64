package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pengelbrecht/poker/internal/poker"
)

var (
	sliderTrackStyle = lipgloss.NewStyle().Foreground(mutedColor)
	sliderKnobStyle  = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	sliderLabelStyle = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
	sliderEndStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// Slider selects one label of an estimate set by integer position. The
// displayed label and the submitted value always match the position.
type Slider struct {
	set      poker.EstimateSet
	pos      int
	label    string
	value    string
	disabled bool

	// OnChange is called after every position change.
	OnChange func(pos int, label string)
}

// Bind attaches the slider to set. The position is kept if it is still in
// range and reset to 0 otherwise. Label and value are set immediately.
func (s *Slider) Bind(set poker.EstimateSet) {
	s.set = set
	if s.pos < 0 || s.pos > s.Max() {
		s.pos = 0
	}
	s.changed()
}

// Max is the highest valid position, or -1 when nothing is bound.
func (s *Slider) Max() int { return s.set.Len() - 1 }

// SetPosition moves to p. Positions outside [0, Max] are rejected and leave
// the slider unchanged.
func (s *Slider) SetPosition(p int) bool {
	if p < 0 || p > s.Max() {
		return false
	}
	s.pos = p
	s.changed()
	return true
}

// Step moves by delta, stopping at either end. It does nothing while the
// slider is disabled.
func (s *Slider) Step(delta int) {
	if s.disabled || s.Max() < 0 {
		return
	}
	p := s.pos + delta
	if p < 0 {
		p = 0
	}
	if p > s.Max() {
		p = s.Max()
	}
	if p != s.pos {
		s.SetPosition(p)
	}
}

func (s *Slider) changed() {
	s.label, _ = s.set.Label(s.pos)
	s.value = s.label
	if s.OnChange != nil {
		s.OnChange(s.pos, s.label)
	}
}

// Position returns the current position.
func (s *Slider) Position() int { return s.pos }

// Label returns the label shown next to the slider.
func (s *Slider) Label() string { return s.label }

// Value returns the estimate that would be submitted.
func (s *Slider) Value() string { return s.value }

// Set returns the bound estimate set.
func (s *Slider) Set() poker.EstimateSet { return s.set }

// SetEnabled implements Control.
func (s *Slider) SetEnabled(enabled bool) { s.disabled = !enabled }

// Enabled implements Control.
func (s *Slider) Enabled() bool { return !s.disabled }

// View renders the track with the knob at the current position, followed by
// the selected label.
func (s *Slider) View(width int) string {
	if s.Max() < 0 {
		return sliderTrackStyle.Render("no estimates configured")
	}
	first, _ := s.set.Label(0)
	last, _ := s.set.Label(s.Max())
	label := sliderLabelStyle.Render(s.label)

	track := width - lipgloss.Width(first) - lipgloss.Width(last) - lipgloss.Width(s.label) - 5
	if track < s.Max()+1 {
		track = s.Max() + 1
	}
	knob := 0
	if s.Max() > 0 {
		knob = s.pos * (track - 1) / s.Max()
	}

	bar := sliderTrackStyle.Render(strings.Repeat("─", knob)) +
		sliderKnobStyle.Render("●") +
		sliderTrackStyle.Render(strings.Repeat("─", track-knob-1))
	if s.disabled {
		bar = sliderTrackStyle.Render(strings.Repeat("─", knob) + "○" + strings.Repeat("─", track-knob-1))
	}

	return sliderEndStyle.Render(first) + " " + bar + " " + sliderEndStyle.Render(last) + "  " + label
}
