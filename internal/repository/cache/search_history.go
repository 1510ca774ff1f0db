package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/domain/repository"
)

const recentSearchesKey = "search:recent"

type searchHistoryRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSearchHistoryRepository keeps recent searches in a capped Redis list.
func NewSearchHistoryRepository(r *Redis) repository.SearchHistoryRepository {
	return &searchHistoryRepository{client: r.Client(), logger: r.logger}
}

func (r *searchHistoryRepository) Push(ctx context.Context, entry domain.RecentSearch, limit int) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal recent search: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, recentSearchesKey, data)
	pipe.LTrim(ctx, recentSearchesKey, 0, int64(limit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to push recent search", zap.Error(err))
		return fmt.Errorf("push recent search: %w", err)
	}
	return nil
}

func (r *searchHistoryRepository) Recent(ctx context.Context, limit int) ([]domain.RecentSearch, error) {
	if limit <= 0 {
		return []domain.RecentSearch{}, nil
	}
	values, err := r.client.LRange(ctx, recentSearchesKey, 0, int64(limit-1)).Result()
	if err != nil {
		r.logger.Error("Failed to read recent searches", zap.Error(err))
		return nil, fmt.Errorf("read recent searches: %w", err)
	}

	out := make([]domain.RecentSearch, 0, len(values))
	for _, v := range values {
		var entry domain.RecentSearch
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			r.logger.Warn("Skipping malformed recent search", zap.Error(err))
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
