package repository

import (
	"context"
	"time"

	"github.com/postcode-finder/internal/domain"
)

// StreamRepository - Redis Streams access for reload events
type StreamRepository interface {
	// ConsumeBatch reads up to count new messages for consumer, blocking at most block.
	// An empty slice means nothing arrived in time.
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]domain.StreamMessage, error)

	// AckMessages acknowledges processed messages
	AckMessages(ctx context.Context, stream, group string, messageIDs ...string) error

	// CreateConsumerGroup creates the group, creating the stream when missing
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// PublishToStream publishes data as JSON in the "data" field
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
