package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/pkg/constants"
)

// MockMLEventRepository is a mock implementation of repository.MLEventRepository
type MockMLEventRepository struct {
	mock.Mock
}

func (m *MockMLEventRepository) InsertBatch(ctx context.Context, events []*models.MLEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockMLEventRepository) UpdateRisk(ctx context.Context, eventID string, score float64, label constants.RiskLabel) error {
	args := m.Called(ctx, eventID, score, label)
	return args.Error(0)
}

func (m *MockMLEventRepository) MeanLatencySince(ctx context.Context, tenantID, modelName string, since time.Time) (float64, bool, error) {
	args := m.Called(ctx, tenantID, modelName, since)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func (m *MockMLEventRepository) FindByID(ctx context.Context, eventID string) (*models.MLEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MLEvent), args.Error(1)
}

// MockLLMEventRepository is a mock implementation of repository.LLMEventRepository
type MockLLMEventRepository struct {
	mock.Mock
}

func (m *MockLLMEventRepository) InsertBatch(ctx context.Context, events []*models.LLMEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockLLMEventRepository) UpdateRisk(ctx context.Context, eventID string, score float64, label constants.RiskLabel, flags []string) error {
	args := m.Called(ctx, eventID, score, label, flags)
	return args.Error(0)
}

func (m *MockLLMEventRepository) MeanLatencySince(ctx context.Context, tenantID string, since time.Time) (float64, bool, error) {
	args := m.Called(ctx, tenantID, since)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

func (m *MockLLMEventRepository) FindByID(ctx context.Context, eventID string) (*models.LLMEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LLMEvent), args.Error(1)
}

// MockModelProfileRepository is a mock implementation of repository.ModelProfileRepository
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

// MockDriftMetricRepository is a mock implementation of repository.DriftMetricRepository
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

// MockAlertRepository is a mock implementation of repository.AlertRepository
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Insert(ctx context.Context, alert *models.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) FindUnresolved(ctx context.Context, tenantID string, limit int) ([]*models.Alert, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Alert), args.Error(1)
}

// MockAlertPublisher is a mock implementation of service.AlertPublisher
type MockAlertPublisher struct {
	mock.Mock
}

func (m *MockAlertPublisher) Publish(ctx context.Context, alert *models.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}
