package service

import "context"

//go:generate mockgen -source=collaborators.go -destination=mocks/mocks.go -package=mocks

// Notifier delivers a plain text message to a driver.
type Notifier interface {
	Notify(ctx context.Context, recipient, message string) error
}

// EventPublisher emits serialized domain events keyed for ordering.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}
