package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/pengelbrecht/poker/internal/outbound"
	"github.com/pengelbrecht/poker/internal/poker"
)

type fakePublisher struct {
	mu    sync.Mutex
	codes []string
	msgs  []poker.InboundMessage
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, code string, msg poker.InboundMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.codes = append(f.codes, code)
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakePublisher) last(t *testing.T) poker.InboundMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.msgs) == 0 {
		t.Fatal("nothing published")
	}
	return f.msgs[len(f.msgs)-1]
}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestRelay(pub Publisher) *echo.Echo {
	e := echo.New()
	register(e, &handler{pub: pub, logger: quietLogger(), newID: func() string { return "item-1" }})
	return e
}

func serve(e *echo.Echo, method, path, body, origin string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if origin != "" {
		req.Header.Set(outbound.OriginHeader, origin)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPostChat(t *testing.T) {
	pub := &fakePublisher{}
	e := newTestRelay(pub)

	rec := serve(e, http.MethodPost, "/sessions/abc/chat", `{"author":"alice","text":"hello"}`, "client-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	msg, ok := pub.last(t).(poker.ChatMsg)
	if !ok {
		t.Fatalf("published %T, want ChatMsg", pub.last(t))
	}
	if msg.Author != "alice" || msg.Text != "hello" {
		t.Errorf("message = %+v", msg.ChatMessage)
	}
	if msg.Source() != "client-1" {
		t.Errorf("origin = %q, want client-1", msg.Source())
	}
	if pub.codes[0] != "abc" {
		t.Errorf("session = %q", pub.codes[0])
	}
}

func TestPostChatBlank(t *testing.T) {
	pub := &fakePublisher{}
	rec := serve(newTestRelay(pub), http.MethodPost, "/sessions/abc/chat", `{"author":"alice","text":"   "}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(pub.msgs) != 0 {
		t.Errorf("published %d messages for blank chat", len(pub.msgs))
	}
}

func TestInvalidSessionCode(t *testing.T) {
	pub := &fakePublisher{}
	rec := serve(newTestRelay(pub), http.MethodPost, "/sessions/not-valid!/chat", `{"text":"x"}`, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAddItem(t *testing.T) {
	pub := &fakePublisher{}
	rec := serve(newTestRelay(pub), http.MethodPost, "/sessions/abc/items", `{"title":"  Login page ","description":"form"}`, "c1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"id":"item-1"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	add, ok := pub.last(t).(poker.ItemAdd)
	if !ok {
		t.Fatalf("published %T, want ItemAdd", pub.last(t))
	}
	if add.Item.ID != "item-1" || add.Item.Title != "Login page" || add.Item.DescriptionText() != "form" {
		t.Errorf("item = %+v", add.Item)
	}
}

func TestAddItemValidation(t *testing.T) {
	pub := &fakePublisher{}
	e := newTestRelay(pub)
	long := strings.Repeat("x", poker.ItemTitleMaxLength+1)
	for _, body := range []string{`{"title":""}`, `{"title":"` + long + `"}`, `not json`} {
		if rec := serve(e, http.MethodPost, "/sessions/abc/items", body, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("body %.20q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestEditAndRemoveItem(t *testing.T) {
	pub := &fakePublisher{}
	e := newTestRelay(pub)

	if rec := serve(e, http.MethodPut, "/sessions/abc/items/7", `{"title":"Renamed"}`, "c2"); rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d", rec.Code)
	}
	edit, ok := pub.last(t).(poker.ItemEdit)
	if !ok || edit.Item.ID != "7" || edit.Item.Title != "Renamed" || edit.Source() != "c2" {
		t.Errorf("edit published %#v", pub.last(t))
	}

	if rec := serve(e, http.MethodDelete, "/sessions/abc/items/7", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
	rm, ok := pub.last(t).(poker.ItemRemove)
	if !ok || rm.Item.ID != "7" {
		t.Errorf("remove published %#v", pub.last(t))
	}
}

func TestPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("redis down")}
	rec := serve(newTestRelay(pub), http.MethodPost, "/sessions/abc/chat", `{"text":"hi"}`, "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestPostEstimate(t *testing.T) {
	pub := &fakePublisher{}
	e := newTestRelay(pub)

	rec := serve(e, http.MethodPost, "/sessions/abc/estimates", `{"itemId":"7","estimate":"1h","author":"bob"}`, "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if len(pub.msgs) != 0 {
		t.Error("estimates should not be broadcast")
	}
	rec = serve(e, http.MethodPost, "/sessions/abc/estimates", `{"itemId":"7"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing estimate status = %d, want 400", rec.Code)
	}
}

func TestNew(t *testing.T) {
	pub := &fakePublisher{}
	e := New(pub, quietLogger())
	rec := serve(e, http.MethodPost, "/sessions/abc/chat", `{"text":"hi"}`, "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
