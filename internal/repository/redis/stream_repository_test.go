package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/domain"
	redisRepo "github.com/postcode-finder/internal/repository/redis"
)

const (
	testReloadStream   = "test:stream:postcode:reload"
	testReloadedStream = "test:stream:postcode:reloaded"
)

func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	client.Del(ctx, testReloadStream, testReloadedStream)
	t.Cleanup(func() {
		client.Del(context.Background(), testReloadStream, testReloadedStream)
		_ = client.Close()
	})

	return client
}

func TestStreamRepository_CreateConsumerGroup(t *testing.T) {
	client := getTestRedisClient(t)
	repo := redisRepo.NewStreamRepository(client, zap.NewNop())
	ctx := context.Background()

	err := repo.CreateConsumerGroup(ctx, testReloadStream, "test-group")
	require.NoError(t, err)

	groups, err := client.XInfoGroups(ctx, testReloadStream).Result()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "test-group", groups[0].Name)

	// BUSYGROUP is not an error
	assert.NoError(t, repo.CreateConsumerGroup(ctx, testReloadStream, "test-group"))
}

func TestStreamRepository_PublishToStream(t *testing.T) {
	client := getTestRedisClient(t)
	repo := redisRepo.NewStreamRepository(client, zap.NewNop())
	ctx := context.Background()

	event := domain.DatasetReloadedEvent{
		RequestID:  uuid.New(),
		Source:     "storage",
		ShapeCount: 712,
		Skipped:    2,
		LoadedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.PublishToStream(ctx, testReloadedStream, event))

	messages, err := client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{testReloadedStream, "0"},
		Count:   1,
	}).Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].Messages, 1)

	data, ok := messages[0].Messages[0].Values["data"].(string)
	require.True(t, ok)

	var received domain.DatasetReloadedEvent
	require.NoError(t, json.Unmarshal([]byte(data), &received))
	assert.Equal(t, event.RequestID, received.RequestID)
	assert.Equal(t, 712, received.ShapeCount)
	assert.Equal(t, "storage", received.Source)
}

func TestStreamRepository_ConsumeBatchAndAck(t *testing.T) {
	client := getTestRedisClient(t)
	repo := redisRepo.NewStreamRepository(client, zap.NewNop())
	ctx := context.Background()
	group := "test-batch-group"

	require.NoError(t, repo.CreateConsumerGroup(ctx, testReloadStream, group))

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.PublishToStream(ctx, testReloadStream, domain.DatasetReloadEvent{
			RequestID:   uuid.New(),
			RequestedBy: "test",
			RequestedAt: time.Now().UTC(),
		}))
	}
	// message without a data field is dropped and acked
	require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
		Stream: testReloadStream,
		Values: map[string]interface{}{"other": "x"},
	}).Err())

	messages, err := repo.ConsumeBatch(ctx, testReloadStream, group, "consumer-1", 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	var event domain.DatasetReloadEvent
	require.NoError(t, json.Unmarshal([]byte(messages[0].Data), &event))
	assert.Equal(t, "test", event.RequestedBy)

	pending, err := client.XPending(ctx, testReloadStream, group).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), pending.Count)

	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	require.NoError(t, repo.AckMessages(ctx, testReloadStream, group, ids...))

	pending, err = client.XPending(ctx, testReloadStream, group).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)

	empty, err := repo.ConsumeBatch(ctx, testReloadStream, group, "consumer-1", 10, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
