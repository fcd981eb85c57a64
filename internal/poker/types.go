// Package poker holds the session data model shared by the terminal client,
// the push channel and the relay.
package poker

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// ItemID identifies an estimation item. The server may send it as a JSON
// number or string; both decode to the same textual form.
type ItemID string

// UnmarshalJSON accepts both numeric and string ids.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := sonic.ConfigStd.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("parse item id: %w", err)
		}
		*id = ItemID(str)
		return nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return fmt.Errorf("parse item id %s: %w", s, err)
	}
	*id = ItemID(s)
	return nil
}

// ChatMessage is a single chat line as it travels over the wire.
type ChatMessage struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// Item is a unit of work estimated in a session.
type Item struct {
	ID          ItemID  `json:"id"`
	Title       string  `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// DescriptionText returns the description, or "" when it is absent.
func (i Item) DescriptionText() string {
	if i.Description == nil {
		return ""
	}
	return *i.Description
}

// StringPtr is a convenience for building items with a description.
func StringPtr(s string) *string {
	return &s
}

// SendResult is the outcome of a single outbound request. There is no retry
// state: each send is one attempt.
type SendResult struct {
	Status     int
	StatusText string
}

// OK reports whether the send succeeded.
func (r SendResult) OK() bool {
	return r.Status == http.StatusOK
}

// ResultFromError maps a transport failure (no HTTP response) to a result.
func ResultFromError(err error) SendResult {
	if err == nil {
		return SendResult{Status: http.StatusOK, StatusText: http.StatusText(http.StatusOK)}
	}
	return SendResult{Status: 0, StatusText: err.Error()}
}

// Limits carried over from the session server.
const (
	SessionCodeMaxLength  = 32
	EstimatesMaxLength    = 1024
	ItemTitleMaxLength    = 256
	ItemDescriptionLength = 4096
)

// ErrInvalidSessionCode is returned for codes that cannot address a session.
var ErrInvalidSessionCode = errors.New("invalid session code")

// ValidateSessionCode checks that code is a non-empty alphanumeric string of
// at most SessionCodeMaxLength characters.
func ValidateSessionCode(code string) error {
	if code == "" || len(code) > SessionCodeMaxLength {
		return fmt.Errorf("%w: %q", ErrInvalidSessionCode, code)
	}
	for _, r := range code {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("%w: %q", ErrInvalidSessionCode, code)
		}
	}
	return nil
}
