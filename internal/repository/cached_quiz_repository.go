package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"wiki-quiz/internal/cache"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedQuizRepository is a read-through cache in front of a QuizRepository.
// Only GetByID is cached; records are immutable so entries never go stale.
type CachedQuizRepository struct {
	next    domain.QuizRepository
	cache   domain.Cache
	ttl     time.Duration
	sfGroup singleflight.Group
}

var _ domain.QuizRepository = (*CachedQuizRepository)(nil)

func NewCachedQuizRepository(next domain.QuizRepository, c domain.Cache, ttl time.Duration) domain.QuizRepository {
	return &CachedQuizRepository{next: next, cache: c, ttl: ttl}
}

func (r *CachedQuizRepository) Save(ctx context.Context, record *domain.QuizRecord) error {
	if err := r.next.Save(ctx, record); err != nil {
		return err
	}
	r.store(ctx, record)
	return nil
}

func (r *CachedQuizRepository) GetByID(ctx context.Context, id int64) (*domain.QuizRecord, error) {
	l := logger.Get()
	cacheKey := cache.QuizRecordKey(strconv.FormatInt(id, 10))

	cached, err := r.cache.Get(ctx, cacheKey)
	switch {
	case err == nil:
		var record domain.QuizRecord
		errDecode := json.Unmarshal([]byte(cached), &record)
		if errDecode == nil {
			return &record, nil
		}
		l.Warn("Discarding undecodable cache entry", zap.String("key", cacheKey), zap.Error(errDecode))
	case errors.Is(err, domain.ErrCacheMiss):
	default:
		l.Warn("Cache read failed, falling back to database", zap.String("key", cacheKey), zap.Error(err))
	}

	res, err, _ := r.sfGroup.Do(cacheKey, func() (interface{}, error) {
		record, fetchErr := r.next.GetByID(ctx, id)
		if fetchErr != nil {
			return nil, fetchErr
		}
		r.store(ctx, record)
		return record, nil
	})
	if err != nil {
		return nil, err
	}

	if record, ok := res.(*domain.QuizRecord); ok {
		return record, nil
	}
	return nil, fmt.Errorf("unexpected type from singleflight.Do for quiz record: %T", res)
}

func (r *CachedQuizRepository) List(ctx context.Context, skip, limit int) ([]domain.QuizSummary, error) {
	return r.next.List(ctx, skip, limit)
}

func (r *CachedQuizRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

func (r *CachedQuizRepository) store(ctx context.Context, record *domain.QuizRecord) {
	cacheKey := cache.QuizRecordKey(strconv.FormatInt(record.ID, 10))
	data, err := json.Marshal(record)
	if err != nil {
		logger.Get().Warn("Failed to encode quiz record for cache", zap.String("key", cacheKey), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, cacheKey, string(data), r.ttl); err != nil {
		logger.Get().Warn("Failed to write quiz record to cache", zap.String("key", cacheKey), zap.Error(err))
	}
}
