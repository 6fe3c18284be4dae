package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aegisai/aegis/internal/domain/models"
	redisinfra "github.com/aegisai/aegis/internal/infrastructure/persistence/redis"
	"github.com/aegisai/aegis/pkg/logger"
)

// MockModelProfileRepository is a mock inner repository.
type MockModelProfileRepository struct {
	mock.Mock
}

func (m *MockModelProfileRepository) FindByTenantAndModel(ctx context.Context, tenantID, modelName string) (*models.ModelProfile, error) {
	args := m.Called(ctx, tenantID, modelName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModelProfile), args.Error(1)
}

func (m *MockModelProfileRepository) Upsert(ctx context.Context, profile *models.ModelProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockDriftMetricRepository is a mock inner repository.
type MockDriftMetricRepository struct {
	mock.Mock
}

func (m *MockDriftMetricRepository) Insert(ctx context.Context, metric *models.DriftMetric) error {
	args := m.Called(ctx, metric)
	return args.Error(0)
}

func (m *MockDriftMetricRepository) LatestScore(ctx context.Context, tenantID, modelName string) (float64, bool, error) {
	args := m.Called(ctx, tenantID, modelName)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func (m *MockDriftMetricRepository) RecentScores(ctx context.Context, tenantID string, limit int) ([]float64, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

func setupRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
}

func TestCachedProfileRepository_SecondReadHitsCache(t *testing.T) {
	client := setupRedis(t)
	inner := new(MockModelProfileRepository)
	cached := redisinfra.NewCachedModelProfileRepository(inner, client, time.Minute, logger.NewNoopLogger())
	ctx := context.Background()

	profile := &models.ModelProfile{
		ID:                "profile-1",
		TenantID:          "tenant-1",
		ModelName:         "fraud-v2",
		BaselineLatencyMS: 100,
		FeatureStats:      map[string]models.FeatureStat{"amount": {Mean: 100, Std: 10}},
	}
	inner.On("FindByTenantAndModel", mock.Anything, "tenant-1", "fraud-v2").
		Return(profile, nil).Once()

	first, err := cached.FindByTenantAndModel(ctx, "tenant-1", "fraud-v2")
	require.NoError(t, err)
	second, err := cached.FindByTenantAndModel(ctx, "tenant-1", "fraud-v2")
	require.NoError(t, err)

	assert.Equal(t, first.BaselineLatencyMS, second.BaselineLatencyMS)
	assert.Equal(t, first.FeatureStats, second.FeatureStats)
	inner.AssertNumberOfCalls(t, "FindByTenantAndModel", 1)
}

func TestCachedProfileRepository_UpsertInvalidates(t *testing.T) {
	client := setupRedis(t)
	inner := new(MockModelProfileRepository)
	cached := redisinfra.NewCachedModelProfileRepository(inner, client, time.Minute, logger.NewNoopLogger())
	ctx := context.Background()

	old := &models.ModelProfile{TenantID: "tenant-1", ModelName: "fraud-v2", BaselineLatencyMS: 100}
	updated := &models.ModelProfile{TenantID: "tenant-1", ModelName: "fraud-v2", BaselineLatencyMS: 150}

	inner.On("FindByTenantAndModel", mock.Anything, "tenant-1", "fraud-v2").
		Return(old, nil).Once()
	inner.On("Upsert", mock.Anything, updated).Return(nil).Once()
	inner.On("FindByTenantAndModel", mock.Anything, "tenant-1", "fraud-v2").
		Return(updated, nil).Once()

	_, err := cached.FindByTenantAndModel(ctx, "tenant-1", "fraud-v2")
	require.NoError(t, err)
	require.NoError(t, cached.Upsert(ctx, updated))

	fresh, err := cached.FindByTenantAndModel(ctx, "tenant-1", "fraud-v2")
	require.NoError(t, err)
	assert.Equal(t, 150.0, fresh.BaselineLatencyMS)
	inner.AssertExpectations(t)
}

func TestCachedProfileRepository_MissPropagates(t *testing.T) {
	client := setupRedis(t)
	inner := new(MockModelProfileRepository)
	cached := redisinfra.NewCachedModelProfileRepository(inner, client, time.Minute, logger.NewNoopLogger())

	inner.On("FindByTenantAndModel", mock.Anything, "tenant-1", "missing").
		Return(nil, assert.AnError)

	_, err := cached.FindByTenantAndModel(context.Background(), "tenant-1", "missing")
	assert.Error(t, err)
}

func TestCachedDriftRepository_InsertRefreshesLatest(t *testing.T) {
	client := setupRedis(t)
	inner := new(MockDriftMetricRepository)
	cached := redisinfra.NewCachedDriftMetricRepository(inner, client, time.Minute, logger.NewNoopLogger())
	ctx := context.Background()

	metric := models.NewDriftMetric("tenant-1", "fraud-v2", time.Now().Add(-5*time.Minute), time.Now(), 250, 42.5)
	inner.On("Insert", mock.Anything, metric).Return(nil).Once()

	require.NoError(t, cached.Insert(ctx, metric))

	// served from the cache, the inner LatestScore is never consulted
	score, ok, err := cached.LatestScore(ctx, "tenant-1", "fraud-v2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42.5, score)
	inner.AssertNotCalled(t, "LatestScore", mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedDriftRepository_ColdCacheFallsThrough(t *testing.T) {
	client := setupRedis(t)
	inner := new(MockDriftMetricRepository)
	cached := redisinfra.NewCachedDriftMetricRepository(inner, client, time.Minute, logger.NewNoopLogger())

	inner.On("LatestScore", mock.Anything, "tenant-1", "fraud-v2").
		Return(17.0, true, nil).Once()

	score, ok, err := cached.LatestScore(context.Background(), "tenant-1", "fraud-v2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 17.0, score)
	inner.AssertExpectations(t)
}

func TestCachedDriftRepository_RecentScoresBypassesCache(t *testing.T) {
	client := setupRedis(t)
	inner := new(MockDriftMetricRepository)
	cached := redisinfra.NewCachedDriftMetricRepository(inner, client, time.Minute, logger.NewNoopLogger())

	inner.On("RecentScores", mock.Anything, "tenant-1", 10).
		Return([]float64{30, 20, 10}, nil).Twice()

	for i := 0; i < 2; i++ {
		scores, err := cached.RecentScores(context.Background(), "tenant-1", 10)
		require.NoError(t, err)
		assert.Equal(t, []float64{30, 20, 10}, scores)
	}
	inner.AssertExpectations(t)
}
