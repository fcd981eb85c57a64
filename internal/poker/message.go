package poker

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Kind names an inbound push message type on the wire.
type Kind string

const (
	KindChat       Kind = "chatMsg"
	KindItemAdd    Kind = "itemAdd"
	KindItemRemove Kind = "itemRemove"
	KindItemEdit   Kind = "itemEdit"
)

// InboundMessage is a server-pushed session event. The concrete types are
// ChatMsg, ItemAdd, ItemRemove, ItemEdit and Unknown.
type InboundMessage interface {
	Kind() Kind
	// Source returns the client id the event originated from, if known.
	Source() string
}

// ChatMsg is a chat line posted by a participant.
type ChatMsg struct {
	Origin string
	ChatMessage
}

// ItemAdd announces a new item.
type ItemAdd struct {
	Origin string
	Item   Item
}

// ItemRemove announces a removed item. Only Item.ID is meaningful.
type ItemRemove struct {
	Origin string
	Item   Item
}

// ItemEdit carries the new title and description of an item.
type ItemEdit struct {
	Origin string
	Item   Item
}

// Unknown is any message whose type this client does not understand.
type Unknown struct {
	Origin string
	Type   string
}

func (m ChatMsg) Kind() Kind    { return KindChat }
func (m ItemAdd) Kind() Kind    { return KindItemAdd }
func (m ItemRemove) Kind() Kind { return KindItemRemove }
func (m ItemEdit) Kind() Kind   { return KindItemEdit }
func (m Unknown) Kind() Kind    { return Kind(m.Type) }

func (m ChatMsg) Source() string    { return m.Origin }
func (m ItemAdd) Source() string    { return m.Origin }
func (m ItemRemove) Source() string { return m.Origin }
func (m ItemEdit) Source() string   { return m.Origin }
func (m Unknown) Source() string    { return m.Origin }

// envelope is the JSON shape of a push message:
// {"type": "...", "origin": "...", "author": "...", "message": ...}
type envelope struct {
	Type    string                 `json:"type"`
	Origin  string                 `json:"origin,omitempty"`
	Author  string                 `json:"author,omitempty"`
	Message sonic.NoCopyRawMessage `json:"message,omitempty"`
}

// Decode parses a push message. Unrecognized types decode to Unknown without
// error; malformed JSON or a payload that does not match its type is an error.
func Decode(data []byte) (InboundMessage, error) {
	var env envelope
	if err := sonic.ConfigStd.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse push message: %w", err)
	}

	switch Kind(env.Type) {
	case KindChat:
		var text string
		if len(env.Message) > 0 {
			if err := sonic.ConfigStd.Unmarshal(env.Message, &text); err != nil {
				return nil, fmt.Errorf("parse %s payload: %w", env.Type, err)
			}
		}
		return ChatMsg{Origin: env.Origin, ChatMessage: ChatMessage{Author: env.Author, Text: text}}, nil
	case KindItemAdd, KindItemRemove, KindItemEdit:
		var item Item
		if len(env.Message) == 0 {
			return nil, fmt.Errorf("parse %s payload: missing message", env.Type)
		}
		if err := sonic.ConfigStd.Unmarshal(env.Message, &item); err != nil {
			return nil, fmt.Errorf("parse %s payload: %w", env.Type, err)
		}
		if item.ID == "" {
			return nil, fmt.Errorf("parse %s payload: missing item id", env.Type)
		}
		switch Kind(env.Type) {
		case KindItemAdd:
			return ItemAdd{Origin: env.Origin, Item: item}, nil
		case KindItemRemove:
			return ItemRemove{Origin: env.Origin, Item: item}, nil
		default:
			return ItemEdit{Origin: env.Origin, Item: item}, nil
		}
	default:
		return Unknown{Origin: env.Origin, Type: env.Type}, nil
	}
}

// Encode renders a push message in wire form. Unknown messages encode with an
// empty payload.
func Encode(msg InboundMessage) ([]byte, error) {
	env := envelope{Type: string(msg.Kind()), Origin: msg.Source()}

	var payload any
	switch m := msg.(type) {
	case ChatMsg:
		env.Author = m.Author
		payload = m.Text
	case ItemAdd:
		payload = m.Item
	case ItemRemove:
		payload = Item{ID: m.Item.ID}
	case ItemEdit:
		payload = m.Item
	case Unknown:
		payload = nil
	default:
		return nil, fmt.Errorf("encode push message: unsupported type %T", msg)
	}

	if payload != nil {
		raw, err := sonic.ConfigStd.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", env.Type, err)
		}
		env.Message = raw
	}

	data, err := sonic.ConfigStd.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode push message: %w", err)
	}
	return data, nil
}
