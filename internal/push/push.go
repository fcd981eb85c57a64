// Package push carries session events over Redis pub/sub. Each session has
// its own channel; every participant subscribes and the relay publishes.
package push

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/pengelbrecht/poker/internal/poker"
)

// ErrClosed is reported when the subscription channel is closed by Redis.
var ErrClosed = errors.New("push channel closed")

// NewClient builds a Redis client from a redis:// URL. Connection strings of
// the form "host:port,password=...,ssl=true" are accepted as well.
func NewClient(conn string) (*redis.Client, error) {
	if conn == "" {
		return nil, errors.New("missing redis connection string")
	}
	opts, err := redis.ParseURL(conn)
	if err != nil {
		parts := strings.Split(conn, ",")
		opts = &redis.Options{Addr: parts[0]}
		for _, p := range parts[1:] {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch strings.ToLower(kv[0]) {
			case "password":
				opts.Password = kv[1]
			case "ssl":
				if strings.ToLower(kv[1]) == "true" {
					opts.TLSConfig = &tls.Config{}
				}
			}
		}
	}
	return redis.NewClient(opts), nil
}

// Channel returns the pub/sub channel name for a session.
func Channel(prefix, code string) string {
	return prefix + ":" + code
}

// Publisher sends push messages to a session channel.
type Publisher struct {
	rc     *redis.Client
	prefix string
}

// NewPublisher creates a publisher for channels under prefix.
func NewPublisher(rc *redis.Client, prefix string) *Publisher {
	return &Publisher{rc: rc, prefix: prefix}
}

// Publish encodes msg and publishes it on the session channel.
func (p *Publisher) Publish(ctx context.Context, code string, msg poker.InboundMessage) error {
	data, err := poker.Encode(msg)
	if err != nil {
		return err
	}
	if err := p.rc.Publish(ctx, Channel(p.prefix, code), data).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", msg.Kind(), code, err)
	}
	log.WithFields(log.Fields{"session": code, "type": msg.Kind()}).Debug("published push message")
	return nil
}

// Subscriber receives push messages for one session.
type Subscriber struct {
	rc      *redis.Client
	channel string
	sub     *redis.PubSub
}

// NewSubscriber creates a subscriber for a session channel. Call Start to
// begin receiving.
func NewSubscriber(rc *redis.Client, prefix, code string) *Subscriber {
	return &Subscriber{rc: rc, channel: Channel(prefix, code)}
}

// Start subscribes and waits for the subscription to be confirmed, so that no
// message published after Start returns is missed.
func (s *Subscriber) Start(ctx context.Context) error {
	sub := s.rc.Subscribe(ctx, s.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	s.sub = sub
	log.WithField("channel", s.channel).Info("subscribed to push channel")
	return nil
}

// Listen delivers decoded messages to out in arrival order until ctx is done
// or the subscription closes. Malformed payloads are logged and skipped.
// out is closed when Listen returns.
func (s *Subscriber) Listen(ctx context.Context, out chan<- poker.InboundMessage) error {
	defer close(out)
	if s.sub == nil {
		return errors.New("subscriber not started")
	}

	ch := s.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				log.WithField("channel", s.channel).Error("subscription channel closed")
				return ErrClosed
			}
			in, err := poker.Decode([]byte(msg.Payload))
			if err != nil {
				log.WithField("channel", s.channel).Errorf("unable to parse push message: %v", err)
				continue
			}
			if u, ok := in.(poker.Unknown); ok {
				log.WithField("channel", s.channel).Warnf("received unknown push message type %q - ignoring it", u.Type)
			}
			select {
			case out <- in:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Close ends the subscription.
func (s *Subscriber) Close() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Close()
}
