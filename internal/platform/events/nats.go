package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName = "TRANSFER_STATUS"
	// KeyHeader carries the ordering key on JetStream messages.
	KeyHeader = "Medtransit-Key"
)

// NATS publishes to a JetStream stream that captures the subject.
type NATS struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

func NewNATS(ctx context.Context, url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("medtransit"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        streamName,
		Description: "Transfer status changes",
		Subjects:    []string{subject},
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", streamName, err)
	}
	return &NATS{conn: conn, js: js, subject: subject}, nil
}

func (n *NATS) Publish(ctx context.Context, key string, payload []byte) error {
	msg := nats.NewMsg(n.subject)
	msg.Data = payload
	msg.Header.Set(KeyHeader, key)
	if _, err := n.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (n *NATS) Close() error {
	if n.conn != nil {
		return n.conn.Drain()
	}
	return nil
}
