package push

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pengelbrecht/poker/internal/poker"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return mr, rc
}

func receive(t *testing.T, ch <-chan poker.InboundMessage) poker.InboundMessage {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed early")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for push message")
	}
	return nil
}

func TestPublishSubscribe(t *testing.T) {
	_, rc := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := NewSubscriber(rc, "poker:session", "abc")
	if err := sub.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer sub.Close()

	out := make(chan poker.InboundMessage, 8)
	go func() { _ = sub.Listen(ctx, out) }()

	pub := NewPublisher(rc, "poker:session")
	sent := []poker.InboundMessage{
		poker.ChatMsg{ChatMessage: poker.ChatMessage{Author: "alice", Text: "hi"}},
		poker.ItemAdd{Item: poker.Item{ID: "1", Title: "Login page"}},
		poker.ItemRemove{Item: poker.Item{ID: "1"}},
	}
	for _, m := range sent {
		if err := pub.Publish(ctx, "abc", m); err != nil {
			t.Fatalf("Publish error: %v", err)
		}
	}

	for i, want := range sent {
		got := receive(t, out)
		if got.Kind() != want.Kind() {
			t.Errorf("message %d kind = %q, want %q", i, got.Kind(), want.Kind())
		}
	}
}

func TestListenSkipsMalformed(t *testing.T) {
	mr, rc := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := NewSubscriber(rc, "p", "s1")
	if err := sub.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer sub.Close()

	out := make(chan poker.InboundMessage, 8)
	go func() { _ = sub.Listen(ctx, out) }()

	mr.Publish("p:s1", "garbage")
	mr.Publish("p:s1", `{"type":"futureThing"}`)
	mr.Publish("p:s1", `{"type":"itemRemove","message":{"id":"x"}}`)

	first := receive(t, out)
	if _, ok := first.(poker.Unknown); !ok {
		t.Errorf("expected Unknown to be forwarded, got %T", first)
	}
	second := receive(t, out)
	if rm, ok := second.(poker.ItemRemove); !ok || rm.Item.ID != "x" {
		t.Errorf("expected itemRemove x, got %#v", second)
	}
}

func TestListenStopsOnCancel(t *testing.T) {
	_, rc := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub := NewSubscriber(rc, "p", "s2")
	if err := sub.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer sub.Close()

	out := make(chan poker.InboundMessage)
	done := make(chan error, 1)
	go func() { done <- sub.Listen(ctx, out) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Listen returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
	if _, ok := <-out; ok {
		t.Error("expected out to be closed")
	}
}

func TestListenWithoutStart(t *testing.T) {
	_, rc := newTestClient(t)
	sub := NewSubscriber(rc, "p", "s3")
	out := make(chan poker.InboundMessage)
	if err := sub.Listen(context.Background(), out); err == nil {
		t.Error("expected error when Listen is called before Start")
	}
}

func TestNewClient(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Error("expected error for empty connection string")
	}
	rc, err := NewClient("localhost:6380,password=secret,ssl=true")
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	defer rc.Close()
	opts := rc.Options()
	if opts.Addr != "localhost:6380" || opts.Password != "secret" || opts.TLSConfig == nil {
		t.Errorf("unexpected options: addr=%q password=%q tls=%v", opts.Addr, opts.Password, opts.TLSConfig != nil)
	}

	rc2, err := NewClient("redis://localhost:6379/2")
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	defer rc2.Close()
	if rc2.Options().DB != 2 {
		t.Errorf("DB = %d, want 2", rc2.Options().DB)
	}
}

func TestChannel(t *testing.T) {
	if got := Channel("poker:session", "abc"); got != "poker:session:abc" {
		t.Errorf("Channel() = %q", got)
	}
}
