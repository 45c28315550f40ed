package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"wiki-quiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Save(ctx context.Context, record *domain.QuizRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id int64) (*domain.QuizRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizRecord), args.Error(1)
}

func (m *MockQuizRepository) List(ctx context.Context, skip, limit int) ([]domain.QuizSummary, error) {
	args := m.Called(ctx, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QuizSummary), args.Error(1)
}

func (m *MockQuizRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

const recordKey = "wikiquiz:quiz:record:7"

func storedRecord() *domain.QuizRecord {
	r := newRecord()
	r.ID = 7
	return r
}

func TestCachedQuizRepository_GetByID_Hit(t *testing.T) {
	inner, c := new(MockQuizRepository), new(MockCache)
	data, err := json.Marshal(storedRecord())
	require.NoError(t, err)
	c.On("Get", mock.Anything, recordKey).Return(string(data), nil).Once()

	repo := NewCachedQuizRepository(inner, c, time.Hour)
	record, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Alan Turing", record.Title)
	assert.True(t, record.DateGenerated.Equal(storedRecord().DateGenerated))

	inner.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	c.AssertExpectations(t)
}

func TestCachedQuizRepository_GetByID_MissPopulates(t *testing.T) {
	inner, c := new(MockQuizRepository), new(MockCache)
	c.On("Get", mock.Anything, recordKey).Return("", domain.ErrCacheMiss).Once()
	inner.On("GetByID", mock.Anything, int64(7)).Return(storedRecord(), nil).Once()
	c.On("Set", mock.Anything, recordKey, mock.MatchedBy(func(v string) bool {
		var r domain.QuizRecord
		return json.Unmarshal([]byte(v), &r) == nil && r.ID == 7
	}), time.Hour).Return(nil).Once()

	repo := NewCachedQuizRepository(inner, c, time.Hour)
	record, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), record.ID)

	inner.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestCachedQuizRepository_GetByID_CacheDown(t *testing.T) {
	inner, c := new(MockQuizRepository), new(MockCache)
	c.On("Get", mock.Anything, recordKey).Return("", errors.New("connection refused")).Once()
	c.On("Set", mock.Anything, recordKey, mock.Anything, time.Hour).Return(errors.New("connection refused")).Once()
	inner.On("GetByID", mock.Anything, int64(7)).Return(storedRecord(), nil).Once()

	repo := NewCachedQuizRepository(inner, c, time.Hour)
	record, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), record.ID)
	inner.AssertExpectations(t)
}

func TestCachedQuizRepository_GetByID_CorruptEntry(t *testing.T) {
	inner, c := new(MockQuizRepository), new(MockCache)
	c.On("Get", mock.Anything, recordKey).Return("{garbage", nil).Once()
	c.On("Set", mock.Anything, recordKey, mock.Anything, time.Hour).Return(nil).Once()
	inner.On("GetByID", mock.Anything, int64(7)).Return(storedRecord(), nil).Once()

	repo := NewCachedQuizRepository(inner, c, time.Hour)
	_, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	inner.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestCachedQuizRepository_GetByID_NotFoundNotCached(t *testing.T) {
	inner, c := new(MockQuizRepository), new(MockCache)
	c.On("Get", mock.Anything, "wikiquiz:quiz:record:404").Return("", domain.ErrCacheMiss).Once()
	inner.On("GetByID", mock.Anything, int64(404)).Return(nil, domain.NewQuizNotFoundError(404)).Once()

	repo := NewCachedQuizRepository(inner, c, time.Hour)
	_, err := repo.GetByID(context.Background(), 404)
	assert.True(t, domain.IsCode(err, domain.CodeQuizNotFound))
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedQuizRepository_GetByID_CollapsesConcurrentMisses(t *testing.T) {
	inner, c := new(MockQuizRepository), new(MockCache)
	release := make(chan time.Time)
	c.On("Get", mock.Anything, recordKey).Return("", domain.ErrCacheMiss)
	c.On("Set", mock.Anything, recordKey, mock.Anything, time.Hour).Return(nil)
	inner.On("GetByID", mock.Anything, int64(7)).
		WaitUntil(release).
		Return(storedRecord(), nil)

	repo := NewCachedQuizRepository(inner, c, time.Hour)

	const callers = 5
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			record, err := repo.GetByID(context.Background(), 7)
			assert.NoError(t, err)
			assert.Equal(t, int64(7), record.ID)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	calls := 0
	for _, call := range inner.Calls {
		if call.Method == "GetByID" {
			calls++
		}
	}
	assert.GreaterOrEqual(t, calls, 1)
	assert.Less(t, calls, callers)
}

func TestCachedQuizRepository_SaveWarmsCache(t *testing.T) {
	inner, c := new(MockQuizRepository), new(MockCache)
	record := newRecord()
	inner.On("Save", mock.Anything, record).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.QuizRecord).ID = 7
	}).Return(nil).Once()
	c.On("Set", mock.Anything, recordKey, mock.Anything, time.Hour).Return(nil).Once()

	repo := NewCachedQuizRepository(inner, c, time.Hour)
	require.NoError(t, repo.Save(context.Background(), record))
	assert.Equal(t, int64(7), record.ID)
	inner.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestCachedQuizRepository_SaveFailureSkipsCache(t *testing.T) {
	inner, c := new(MockQuizRepository), new(MockCache)
	record := newRecord()
	inner.On("Save", mock.Anything, record).Return(domain.NewStorageError("failed", nil)).Once()

	repo := NewCachedQuizRepository(inner, c, time.Hour)
	assert.Error(t, repo.Save(context.Background(), record))
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedQuizRepository_Delegates(t *testing.T) {
	inner, c := new(MockQuizRepository), new(MockCache)
	inner.On("List", mock.Anything, 0, 10).Return([]domain.QuizSummary{{ID: 1}}, nil).Once()
	inner.On("Ping", mock.Anything).Return(nil).Once()

	repo := NewCachedQuizRepository(inner, c, time.Hour)
	list, err := repo.List(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, repo.Ping(context.Background()))
	inner.AssertExpectations(t)
}
