package tui

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/pengelbrecht/poker/internal/poker"
)

// Form ids registered by New.
const (
	ChatForm     = "chat"
	EstimateForm = "estimate"
)

// ErrUnknownForm is returned by SetFormEnabled for an unregistered form id.
var ErrUnknownForm = errors.New("unknown form")

// Input is the composer the dispatcher reads from and clears.
type Input interface {
	Control
	Value() string
	Reset()
}

// SendState tracks the outbound chat request.
type SendState int

const (
	Idle SendState = iota
	Sending
)

func (s SendState) String() string {
	if s == Sending {
		return "sending"
	}
	return "idle"
}

// Dispatcher applies push messages and send results to the view components.
// It is not safe for concurrent use; all calls happen on the bubbletea
// update loop.
type Dispatcher struct {
	selfID string
	chat   *ChatLog
	items  *ItemList
	input  Input
	forms  map[string][]Control
	state  SendState
}

// NewDispatcher creates a dispatcher over the given components. selfID is
// this client's origin id; push messages carrying it are ignored. The chat
// form is registered with input as its only control.
func NewDispatcher(selfID string, chat *ChatLog, items *ItemList, input Input) *Dispatcher {
	d := &Dispatcher{
		selfID: selfID,
		chat:   chat,
		items:  items,
		input:  input,
		forms:  make(map[string][]Control),
	}
	d.RegisterForm(ChatForm, input)
	return d
}

// RegisterForm adds controls to the form named id.
func (d *Dispatcher) RegisterForm(id string, controls ...Control) {
	d.forms[id] = append(d.forms[id], controls...)
}

// Dispatch applies one push message. Unknown message types and removals of
// absent items change nothing. An edit for an absent item returns an error
// wrapping ErrUnknownItem and also changes nothing.
func (d *Dispatcher) Dispatch(msg poker.InboundMessage) error {
	if d.selfID != "" && msg.Source() == d.selfID {
		log.WithField("type", msg.Kind()).Debug("ignoring own push message")
		return nil
	}

	switch m := msg.(type) {
	case poker.ChatMsg:
		d.chat.Append(FormatChat(m.Author, m.Text))
	case poker.ItemAdd:
		d.items.Append(m.Item)
	case poker.ItemRemove:
		if !d.items.Remove(m.Item.ID) {
			log.WithField("item", m.Item.ID).Debug("remove for unknown item")
		}
	case poker.ItemEdit:
		if err := d.items.Edit(m.Item.ID, m.Item.Title, m.Item.Description); err != nil {
			return fmt.Errorf("edit item %s: %w", m.Item.ID, err)
		}
	default:
		log.WithField("type", msg.Kind()).Debug("ignoring push message")
	}
	return nil
}

// State returns the chat send state.
func (d *Dispatcher) State() SendState { return d.state }

// BeginSend moves to Sending and disables the chat form. It returns false,
// changing nothing, if a send is already in flight.
func (d *Dispatcher) BeginSend() bool {
	if d.state == Sending {
		return false
	}
	d.state = Sending
	_ = d.SetFormEnabled(ChatForm, false)
	return true
}

// OnSendResult finishes a chat send. On success the sent text is echoed as
// the author's chat line and the composer is cleared; on failure an error
// line is shown and the composer keeps its text. Either way the chat form is
// enabled again.
func (d *Dispatcher) OnSendResult(res poker.SendResult, localText, author string) {
	if res.OK() {
		d.chat.Append(FormatChat(author, localText))
		d.input.Reset()
	} else {
		log.WithFields(log.Fields{"status": res.Status, "text": res.StatusText}).Warn("chat send failed")
		d.chat.Append(FormatError(res.StatusText))
	}
	d.state = Idle
	_ = d.SetFormEnabled(ChatForm, true)
}

// OnEstimateResult reports the outcome of an estimate submission and enables
// the estimate form again.
func (d *Dispatcher) OnEstimateResult(res poker.SendResult, title, estimate string) {
	if res.OK() {
		d.chat.Append(FormatNotice(fmt.Sprintf("estimated %q at %s", title, estimate)))
	} else {
		log.WithFields(log.Fields{"status": res.Status, "text": res.StatusText}).Warn("estimate send failed")
		d.chat.Append(FormatError(res.StatusText))
	}
	_ = d.SetFormEnabled(EstimateForm, true)
}

// Notice appends a local status line to the chat log.
func (d *Dispatcher) Notice(text string) {
	d.chat.Append(FormatNotice(text))
}

// SetFormEnabled enables or disables every control of the named form.
func (d *Dispatcher) SetFormEnabled(formID string, enabled bool) error {
	controls, ok := d.forms[formID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownForm, formID)
	}
	for _, c := range controls {
		c.SetEnabled(enabled)
	}
	return nil
}

// KeyAction is what a key press in the composer should do.
type KeyAction int

const (
	// KeyPass hands the key to the composer.
	KeyPass KeyAction = iota
	// KeySwallow drops the key.
	KeySwallow
	// KeyNewline inserts a line break.
	KeyNewline
	// KeySubmit sends the composed text.
	KeySubmit
)

// ClassifyKey maps a key, as rendered by tea.KeyMsg.String, to a composer
// action. Enter alone never submits and is dropped while the composer is
// empty.
func ClassifyKey(key string, inputEmpty bool) KeyAction {
	switch key {
	case "alt+enter", "ctrl+s":
		return KeySubmit
	case "enter":
		if inputEmpty {
			return KeySwallow
		}
		return KeyNewline
	}
	return KeyPass
}
