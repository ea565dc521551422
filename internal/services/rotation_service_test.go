package services

import (
	"context"
	"errors"
	"testing"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSettingsReader struct {
	mock.Mock
}

func (m *MockSettingsReader) GetByCampaign(ctx context.Context, campaignID string) (*model.CampaignCallerIDSettings, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CampaignCallerIDSettings), args.Error(1)
}

type MockPoolReader struct {
	mock.Mock
}

func (m *MockPoolReader) Get(ctx context.Context, id int64) (*model.CallerIDPool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallerIDPool), args.Error(1)
}

type MockRotationClaimer struct {
	mock.Mock
}

func (m *MockRotationClaimer) ClaimRoundRobin(ctx context.Context, poolID int64, areaCode string) (*model.PoolNumber, error) {
	args := m.Called(ctx, poolID, areaCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PoolNumber), args.Error(1)
}

func (m *MockRotationClaimer) ClaimRandom(ctx context.Context, poolID int64, areaCode string) (*model.PoolNumber, error) {
	args := m.Called(ctx, poolID, areaCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PoolNumber), args.Error(1)
}

func (m *MockRotationClaimer) ClaimLRU(ctx context.Context, poolID int64, areaCode string) (*model.PoolNumber, error) {
	args := m.Called(ctx, poolID, areaCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PoolNumber), args.Error(1)
}

type MockUsageLogAppender struct {
	mock.Mock
}

func (m *MockUsageLogAppender) Append(ctx context.Context, entry *model.UsageLogEntry) (*model.UsageLogEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UsageLogEntry), args.Error(1)
}

func (m *MockUsageLogAppender) List(ctx context.Context, f model.UsageLogFilter) ([]*model.UsageLogEntry, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.UsageLogEntry), args.Get(1).(int64), args.Error(2)
}

func newRotationFixture() (*MockSettingsReader, *MockPoolReader, *MockRotationClaimer, *MockUsageLogAppender, *RotationService) {
	settings := new(MockSettingsReader)
	pools := new(MockPoolReader)
	claimer := new(MockRotationClaimer)
	usage := new(MockUsageLogAppender)
	svc := NewRotationService(settings, pools, claimer, usage, nil, RotationOptions{})
	return settings, pools, claimer, usage, svc
}

func poolSettings(strategy model.SelectionStrategy, fallback string) *model.CampaignCallerIDSettings {
	poolID := int64(5)
	return &model.CampaignCallerIDSettings{
		CampaignID:        "VENTAS01",
		RotationMode:      model.RotationModePool,
		PoolID:            &poolID,
		MatchMode:         model.MatchModeLead,
		FallbackCallerID:  fallback,
		SelectionStrategy: strategy,
	}
}

func TestRotationService_Select_Unconfigured(t *testing.T) {
	settings, _, _, usage, svc := newRotationFixture()
	ctx := context.Background()

	settings.On("GetByCampaign", mock.Anything, "VENTAS01").Return(nil, repository.ErrNotFound)
	usage.On("Append", mock.Anything, mock.AnythingOfType("*model.UsageLogEntry")).Return(&model.UsageLogEntry{}, nil)

	sel := svc.Select(ctx, "VENTAS01", "3051234567", "100")
	assert.Equal(t, model.ResultDefault, sel.Result)
	assert.Empty(t, sel.CallerID)

	usage.AssertExpectations(t)
}

func TestRotationService_Select_RotationOff(t *testing.T) {
	settings, _, _, usage, svc := newRotationFixture()

	settings.On("GetByCampaign", mock.Anything, "VENTAS01").Return(&model.CampaignCallerIDSettings{
		CampaignID:   "VENTAS01",
		RotationMode: model.RotationModeOff,
	}, nil)
	usage.On("Append", mock.Anything, mock.Anything).Return(&model.UsageLogEntry{}, nil)

	sel := svc.Select(context.Background(), "VENTAS01", "3051234567", "100")
	assert.Equal(t, model.ResultDefault, sel.Result)
}

func TestRotationService_Select_Matched(t *testing.T) {
	settings, pools, claimer, usage, svc := newRotationFixture()

	settings.On("GetByCampaign", mock.Anything, "VENTAS01").Return(poolSettings(model.StrategyRoundRobin, ""), nil)
	pools.On("Get", mock.Anything, int64(5)).Return(&model.CallerIDPool{ID: 5, IsActive: true}, nil)
	claimer.On("ClaimRoundRobin", mock.Anything, int64(5), "305").
		Return(&model.PoolNumber{CallerID: "3059999999", AreaCode: "305"}, nil)
	usage.On("Append", mock.Anything, mock.MatchedBy(func(e *model.UsageLogEntry) bool {
		return e.Result == model.ResultMatched && e.CallerID == "3059999999" && e.AreaCodeTarget == "305"
	})).Return(&model.UsageLogEntry{}, nil)

	sel := svc.Select(context.Background(), "VENTAS01", "+57 305 123 4567", "100")
	assert.Equal(t, model.ResultMatched, sel.Result)
	assert.Equal(t, "3059999999", sel.CallerID)
	assert.Equal(t, "305", sel.AreaCodeTarget)
	assert.Equal(t, model.StrategyRoundRobin, sel.Strategy)

	claimer.AssertExpectations(t)
	usage.AssertExpectations(t)
}

func TestRotationService_Select_FixedAreaCode(t *testing.T) {
	settings, pools, claimer, usage, svc := newRotationFixture()

	cfg := poolSettings(model.StrategyLRU, "")
	cfg.MatchMode = model.MatchModeFixed
	cfg.FixedAreaCode = "601"

	settings.On("GetByCampaign", mock.Anything, "VENTAS01").Return(cfg, nil)
	pools.On("Get", mock.Anything, int64(5)).Return(&model.CallerIDPool{ID: 5, IsActive: true}, nil)
	claimer.On("ClaimLRU", mock.Anything, int64(5), "601").
		Return(&model.PoolNumber{CallerID: "6011111111"}, nil)
	usage.On("Append", mock.Anything, mock.Anything).Return(&model.UsageLogEntry{}, nil)

	sel := svc.Select(context.Background(), "VENTAS01", "3051234567", "100")
	assert.Equal(t, model.ResultMatched, sel.Result)
	assert.Equal(t, "601", sel.AreaCodeTarget)

	claimer.AssertExpectations(t)
}

func TestRotationService_Select_FallbackAndNoMatch(t *testing.T) {
	t.Run("fallback configured", func(t *testing.T) {
		settings, pools, claimer, usage, svc := newRotationFixture()

		settings.On("GetByCampaign", mock.Anything, "VENTAS01").Return(poolSettings(model.StrategyRoundRobin, "3050000000"), nil)
		pools.On("Get", mock.Anything, int64(5)).Return(&model.CallerIDPool{ID: 5, IsActive: true}, nil)
		claimer.On("ClaimRoundRobin", mock.Anything, int64(5), "310").Return(nil, repository.ErrNoCandidate)
		usage.On("Append", mock.Anything, mock.Anything).Return(&model.UsageLogEntry{}, nil)

		sel := svc.Select(context.Background(), "VENTAS01", "3101234567", "100")
		assert.Equal(t, model.ResultFallback, sel.Result)
		assert.Equal(t, "3050000000", sel.CallerID)
	})

	t.Run("no fallback", func(t *testing.T) {
		settings, pools, claimer, usage, svc := newRotationFixture()

		settings.On("GetByCampaign", mock.Anything, "VENTAS01").Return(poolSettings(model.StrategyRoundRobin, ""), nil)
		pools.On("Get", mock.Anything, int64(5)).Return(&model.CallerIDPool{ID: 5, IsActive: true}, nil)
		claimer.On("ClaimRoundRobin", mock.Anything, int64(5), "310").Return(nil, repository.ErrNoCandidate)
		usage.On("Append", mock.Anything, mock.Anything).Return(&model.UsageLogEntry{}, nil)

		sel := svc.Select(context.Background(), "VENTAS01", "3101234567", "100")
		assert.Equal(t, model.ResultNoMatch, sel.Result)
		assert.Empty(t, sel.CallerID)
	})
}

func TestRotationService_Select_NeverFails(t *testing.T) {
	t.Run("settings lookup blows up", func(t *testing.T) {
		settings, _, _, usage, svc := newRotationFixture()

		settings.On("GetByCampaign", mock.Anything, "VENTAS01").Return(nil, errors.New("connection refused"))
		usage.On("Append", mock.Anything, mock.Anything).Return(&model.UsageLogEntry{}, nil)

		sel := svc.Select(context.Background(), "VENTAS01", "3051234567", "100")
		assert.Equal(t, model.ResultDefault, sel.Result)
	})

	t.Run("claim blows up", func(t *testing.T) {
		settings, pools, claimer, usage, svc := newRotationFixture()

		settings.On("GetByCampaign", mock.Anything, "VENTAS01").Return(poolSettings(model.StrategyRoundRobin, "3050000000"), nil)
		pools.On("Get", mock.Anything, int64(5)).Return(&model.CallerIDPool{ID: 5, IsActive: true}, nil)
		claimer.On("ClaimRoundRobin", mock.Anything, int64(5), "305").Return(nil, errors.New("deadlock"))
		usage.On("Append", mock.Anything, mock.Anything).Return(&model.UsageLogEntry{}, nil)

		// Unexpected store errors degrade to DEFAULT, not FALLBACK.
		sel := svc.Select(context.Background(), "VENTAS01", "3051234567", "100")
		assert.Equal(t, model.ResultDefault, sel.Result)
		assert.Empty(t, sel.CallerID)
	})

	t.Run("usage log append failure is swallowed", func(t *testing.T) {
		settings, _, _, usage, svc := newRotationFixture()

		settings.On("GetByCampaign", mock.Anything, "VENTAS01").Return(nil, repository.ErrNotFound)
		usage.On("Append", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

		sel := svc.Select(context.Background(), "VENTAS01", "3051234567", "100")
		assert.Equal(t, model.ResultDefault, sel.Result)
	})
}

func TestRotationService_Select_InactivePool(t *testing.T) {
	settings, pools, _, usage, svc := newRotationFixture()

	settings.On("GetByCampaign", mock.Anything, "VENTAS01").Return(poolSettings(model.StrategyRandom, "3050000000"), nil)
	pools.On("Get", mock.Anything, int64(5)).Return(&model.CallerIDPool{ID: 5, IsActive: false}, nil)
	usage.On("Append", mock.Anything, mock.Anything).Return(&model.UsageLogEntry{}, nil)

	sel := svc.Select(context.Background(), "VENTAS01", "3051234567", "100")
	assert.Equal(t, model.ResultDefault, sel.Result)
}

func TestRotationService_ListUsage(t *testing.T) {
	_, _, _, usage, svc := newRotationFixture()

	usage.On("List", mock.Anything, mock.Anything).Return([]*model.UsageLogEntry{{ID: 1}}, int64(1), nil)

	entries, total, err := svc.ListUsage(context.Background(), model.UsageLogFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, entries, 1)
}
