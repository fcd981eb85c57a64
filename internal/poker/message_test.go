package poker

import (
	"errors"
	"testing"
)

func TestDecodeChat(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"chatMsg","author":"Alice Smith","origin":"c1","message":"hi <b>there</b>"}`))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	chat, ok := msg.(ChatMsg)
	if !ok {
		t.Fatalf("expected ChatMsg, got %T", msg)
	}
	if chat.Author != "Alice Smith" || chat.Text != "hi <b>there</b>" {
		t.Errorf("unexpected chat payload: %+v", chat)
	}
	if chat.Source() != "c1" {
		t.Errorf("Source() = %q, want c1", chat.Source())
	}
}

func TestDecodeItems(t *testing.T) {
	tests := []struct {
		data string
		kind Kind
		id   ItemID
	}{
		{`{"type":"itemAdd","message":{"id":7,"title":"Login"}}`, KindItemAdd, "7"},
		{`{"type":"itemRemove","message":{"id":"x"}}`, KindItemRemove, "x"},
		{`{"type":"itemEdit","message":{"id":"42","title":"T","description":null}}`, KindItemEdit, "42"},
	}

	for _, tt := range tests {
		msg, err := Decode([]byte(tt.data))
		if err != nil {
			t.Fatalf("Decode(%s) error: %v", tt.data, err)
		}
		if msg.Kind() != tt.kind {
			t.Errorf("Kind() = %q, want %q", msg.Kind(), tt.kind)
		}
		var item Item
		switch m := msg.(type) {
		case ItemAdd:
			item = m.Item
		case ItemRemove:
			item = m.Item
		case ItemEdit:
			item = m.Item
		}
		if item.ID != tt.id {
			t.Errorf("item id = %q, want %q", item.ID, tt.id)
		}
	}
}

func TestDecodeEditNullDescription(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"itemEdit","message":{"id":1,"title":"T","description":null}}`))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	edit := msg.(ItemEdit)
	if edit.Item.Description != nil {
		t.Errorf("expected nil description, got %q", *edit.Item.Description)
	}
	if edit.Item.DescriptionText() != "" {
		t.Errorf("DescriptionText() = %q, want empty", edit.Item.DescriptionText())
	}
}

func TestDecodeUnknownType(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"voteReveal","message":{"anything":true}}`))
	if err != nil {
		t.Fatalf("unknown types must not fail: %v", err)
	}
	u, ok := msg.(Unknown)
	if !ok {
		t.Fatalf("expected Unknown, got %T", msg)
	}
	if u.Type != "voteReveal" {
		t.Errorf("Type = %q, want voteReveal", u.Type)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, data := range []string{
		`not json`,
		`{"type":"itemAdd"}`,
		`{"type":"itemRemove","message":{"title":"no id"}}`,
		`{"type":"chatMsg","message":{"id":1}}`,
		`{"type":"itemEdit","message":{"id":1.5}}`,
	} {
		if _, err := Decode([]byte(data)); err == nil {
			t.Errorf("Decode(%s) expected error", data)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	msgs := []InboundMessage{
		ChatMsg{Origin: "o", ChatMessage: ChatMessage{Author: "bob", Text: "hello"}},
		ItemAdd{Item: Item{ID: "1", Title: "A", Description: StringPtr("desc")}},
		ItemRemove{Item: Item{ID: "1", Title: "ignored"}},
		ItemEdit{Item: Item{ID: "1", Title: "B"}},
	}
	for _, in := range msgs {
		data, err := Encode(in)
		if err != nil {
			t.Fatalf("Encode(%T) error: %v", in, err)
		}
		out, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(%s) error: %v", data, err)
		}
		if out.Kind() != in.Kind() || out.Source() != in.Source() {
			t.Errorf("round trip mismatch: %+v -> %+v", in, out)
		}
	}

	data, _ := Encode(ItemRemove{Item: Item{ID: "9", Title: "ignored"}})
	out, _ := Decode(data)
	if rm := out.(ItemRemove); rm.Item.Title != "" {
		t.Errorf("itemRemove should carry only the id, got title %q", rm.Item.Title)
	}
}

func TestSendResult(t *testing.T) {
	if !(SendResult{Status: 200}).OK() {
		t.Error("200 should be OK")
	}
	if (SendResult{Status: 201}).OK() {
		t.Error("only 200 is OK")
	}
	r := ResultFromError(errors.New("connection refused"))
	if r.OK() || r.Status != 0 || r.StatusText != "connection refused" {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestValidateSessionCode(t *testing.T) {
	if err := ValidateSessionCode("aB3dE5gH9k"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, code := range []string{"", "has space", "../etc", "abcdefghijabcdefghijabcdefghijabc"} {
		if err := ValidateSessionCode(code); !errors.Is(err, ErrInvalidSessionCode) {
			t.Errorf("ValidateSessionCode(%q) = %v, want ErrInvalidSessionCode", code, err)
		}
	}
}
