// Package tui implements the terminal view of a planning-poker session.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/pengelbrecht/poker/internal/outbound"
	"github.com/pengelbrecht/poker/internal/poker"
)

// Sender performs outbound requests for the view.
type Sender interface {
	SendChat(ctx context.Context, code string, req outbound.ChatRequest) poker.SendResult
	SendEstimate(ctx context.Context, code string, req outbound.EstimateRequest) poker.SendResult
}

// Config holds TUI configuration.
type Config struct {
	Session   string
	Author    string
	ClientID  string
	Estimates poker.EstimateSet
	Sender    Sender
	// Inbound delivers push messages. It is closed when the push channel ends.
	Inbound <-chan poker.InboundMessage
}

type pane int

const (
	focusInput pane = iota
	focusItems
	focusSlider
	paneCount
)

// Model is the main TUI model for a session.
type Model struct {
	session string
	author  string
	sender  Sender
	inbound <-chan poker.InboundMessage

	dispatcher *Dispatcher
	chat       *ChatLog
	items      *ItemList
	input      *ChatInput
	slider     *Slider

	keys       KeyMap
	help       help.Model
	focus      pane
	showHelp   bool
	pushClosed bool
	quitting   bool

	width  int
	height int
}

// Message types delivered to Update.
type (
	// PushMsg carries one push message.
	PushMsg struct {
		Msg poker.InboundMessage
	}

	// PushClosedMsg signals that the push channel has ended.
	PushClosedMsg struct{}

	// SendResultMsg is the outcome of a chat send.
	SendResultMsg struct {
		Result poker.SendResult
		Text   string
	}

	// EstimateResultMsg is the outcome of an estimate submission.
	EstimateResultMsg struct {
		Result   poker.SendResult
		Title    string
		Estimate string
	}
)

// New creates a session view. The slider is bound to cfg.Estimates before
// the first render.
func New(cfg Config) Model {
	chat := NewChatLog(60, 10)
	items := NewItemList(itemPanelWidth, 10)
	input := NewChatInput(60, inputHeight)
	slider := &Slider{}
	slider.Bind(cfg.Estimates)

	d := NewDispatcher(cfg.ClientID, chat, items, input)
	d.RegisterForm(EstimateForm, slider)

	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(mutedColor)
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(mutedColor)

	d.Notice("joined session " + cfg.Session)

	return Model{
		session:    cfg.Session,
		author:     cfg.Author,
		sender:     cfg.Sender,
		inbound:    cfg.Inbound,
		dispatcher: d,
		chat:       chat,
		items:      items,
		input:      input,
		slider:     slider,
		keys:       DefaultKeyMap(),
		help:       h,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForPush(m.inbound))
}

// waitForPush reads the next push message. Update re-arms it after every
// message so messages are applied in arrival order.
func waitForPush(ch <-chan poker.InboundMessage) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return PushClosedMsg{}
		}
		return PushMsg{Msg: msg}
	}
}

func (m Model) sendChat(text string) tea.Cmd {
	sender, code, author := m.sender, m.session, m.author
	return func() tea.Msg {
		res := sender.SendChat(context.Background(), code, outbound.ChatRequest{Author: author, Text: text})
		return SendResultMsg{Result: res, Text: text}
	}
}

func (m Model) sendEstimate(item poker.Item, estimate string) tea.Cmd {
	sender, code, author := m.sender, m.session, m.author
	return func() tea.Msg {
		res := sender.SendEstimate(context.Background(), code, outbound.EstimateRequest{
			ItemID:   item.ID,
			Estimate: estimate,
			Author:   author,
		})
		return EstimateResultMsg{Result: res, Title: item.Title, Estimate: estimate}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case PushMsg:
		if err := m.dispatcher.Dispatch(msg.Msg); err != nil {
			log.Debugf("push message not applied: %v", err)
		}
		return m, waitForPush(m.inbound)

	case PushClosedMsg:
		m.pushClosed = true
		m.dispatcher.Notice("disconnected from session updates")
		return m, nil

	case SendResultMsg:
		m.dispatcher.OnSendResult(msg.Result, msg.Text, m.author)
		return m, nil

	case EstimateResultMsg:
		m.dispatcher.OnEstimateResult(msg.Result, msg.Title, msg.Estimate)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmds []tea.Cmd
	cmds = append(cmds, m.input.Update(msg))
	cmds = append(cmds, m.chat.Update(msg))
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case m.showHelp:
		if msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return m, nil
	case key.Matches(msg, m.keys.SwitchPane):
		return m.switchPane(msg.String() == "shift+tab")
	case key.Matches(msg, m.keys.ScrollUp):
		m.chat.LineUp(m.chat.viewport.Height)
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.chat.LineDown(m.chat.viewport.Height)
		return m, nil
	}

	switch m.focus {
	case focusItems:
		return m, m.items.Update(msg)

	case focusSlider:
		switch {
		case key.Matches(msg, m.keys.Lower):
			m.slider.Step(-1)
		case key.Matches(msg, m.keys.Raise):
			m.slider.Step(1)
		case key.Matches(msg, m.keys.Estimate):
			return m, m.submitEstimate()
		}
		return m, nil
	}

	switch ClassifyKey(msg.String(), m.input.Value() == "") {
	case KeySubmit:
		return m, m.submitChat()
	case KeySwallow:
		return m, nil
	}
	return m, m.input.Update(msg)
}

func (m Model) switchPane(back bool) (tea.Model, tea.Cmd) {
	if back {
		m.focus = (m.focus + paneCount - 1) % paneCount
	} else {
		m.focus = (m.focus + 1) % paneCount
	}
	if m.focus == focusInput {
		return m, m.input.Focus()
	}
	m.input.Blur()
	return m, nil
}

func (m Model) submitChat() tea.Cmd {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !m.dispatcher.BeginSend() {
		return nil
	}
	return m.sendChat(text)
}

func (m Model) submitEstimate() tea.Cmd {
	if !m.slider.Enabled() {
		return nil
	}
	item, ok := m.items.Selected()
	if !ok {
		m.dispatcher.Notice("select an item to estimate")
		return nil
	}
	if m.slider.Value() == "" {
		return nil
	}
	_ = m.dispatcher.SetFormEnabled(EstimateForm, false)
	return m.sendEstimate(item, m.slider.Value())
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading...\n"
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderMainContent(),
		m.renderSlider(),
		m.renderInput(),
		m.renderFooter(),
	)
	if m.showHelp {
		return m.renderHelpOverlay(view)
	}
	return view
}

// Dispatcher returns the session dispatcher.
func (m Model) Dispatcher() *Dispatcher { return m.dispatcher }
