package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestFormatChat(t *testing.T) {
	got := ansi.Strip(FormatChat("alice", "hello"))
	if got != "alice: hello" {
		t.Errorf("FormatChat = %q, want %q", got, "alice: hello")
	}
}

func TestFormatChatIsPlainText(t *testing.T) {
	tests := []struct {
		name   string
		author string
		text   string
		want   string
	}{
		{"color escape", "mallory", "\x1b[31mred\x1b[0m", "mallory: red"},
		{"cursor movement", "m", "a\x1b[2Jb", "m: ab"},
		{"bell and backspace", "m", "x\a\by", "m: xy"},
		{"escape in author", "\x1b[1mbob", "hi", "bob: hi"},
		{"newline kept", "bob", "one\ntwo", "bob: one\ntwo"},
		{"markup untouched", "bob", "<b>hi</b>", "bob: <b>hi</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := FormatChat(tt.author, tt.text)
			if got := ansi.Strip(raw); got != tt.want {
				t.Errorf("FormatChat = %q, want %q", got, tt.want)
			}
			if strings.ContainsAny(ansi.Strip(raw), "\a\b\x1b") {
				t.Errorf("control characters survived: %q", raw)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	got := ansi.Strip(FormatError("Server Error"))
	if got != "[Error: Server Error]" {
		t.Errorf("FormatError = %q", got)
	}
	if ansi.Strip(FormatChat("Error", "Server Error")) == got {
		t.Error("error line should be distinguishable from a chat line")
	}
}

func TestFormatNotice(t *testing.T) {
	if got := ansi.Strip(FormatNotice("joined")); got != "[joined]" {
		t.Errorf("FormatNotice = %q", got)
	}
}
