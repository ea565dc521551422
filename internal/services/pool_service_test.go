package services

import (
	"context"
	"testing"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPoolRepository struct {
	mock.Mock
}

func (m *MockPoolRepository) Create(ctx context.Context, pool *model.CallerIDPool) (*model.CallerIDPool, error) {
	args := m.Called(ctx, pool)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallerIDPool), args.Error(1)
}

func (m *MockPoolRepository) Get(ctx context.Context, id int64) (*model.CallerIDPool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallerIDPool), args.Error(1)
}

func (m *MockPoolRepository) List(ctx context.Context, f model.PoolFilter) ([]*model.CallerIDPool, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.CallerIDPool), args.Get(1).(int64), args.Error(2)
}

func (m *MockPoolRepository) Update(ctx context.Context, id int64, req model.PoolUpdateRequest) (*model.CallerIDPool, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallerIDPool), args.Error(1)
}

func (m *MockPoolRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPoolRepository) InsertNumbers(ctx context.Context, numbers []*model.PoolNumber) (int, error) {
	args := m.Called(ctx, numbers)
	return args.Int(0), args.Error(1)
}

func (m *MockPoolRepository) InsertNumber(ctx context.Context, number *model.PoolNumber) (*model.PoolNumber, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PoolNumber), args.Error(1)
}

func (m *MockPoolRepository) ListNumbers(ctx context.Context, f model.PoolNumberFilter) ([]*model.PoolNumber, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.PoolNumber), args.Get(1).(int64), args.Error(2)
}

func (m *MockPoolRepository) DeleteNumber(ctx context.Context, poolID, numberID int64) error {
	args := m.Called(ctx, poolID, numberID)
	return args.Error(0)
}

func (m *MockPoolRepository) SetNumberActive(ctx context.Context, poolID, numberID int64, active bool) error {
	args := m.Called(ctx, poolID, numberID, active)
	return args.Error(0)
}

func (m *MockPoolRepository) AreaCodeSummaries(ctx context.Context, poolID int64) ([]*model.AreaCodeSummary, error) {
	args := m.Called(ctx, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AreaCodeSummary), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetByCampaign(ctx context.Context, campaignID string) (*model.CampaignCallerIDSettings, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CampaignCallerIDSettings), args.Error(1)
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, s *model.CampaignCallerIDSettings) (*model.CampaignCallerIDSettings, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CampaignCallerIDSettings), args.Error(1)
}

func (m *MockSettingsRepository) Delete(ctx context.Context, campaignID string) error {
	args := m.Called(ctx, campaignID)
	return args.Error(0)
}

func (m *MockSettingsRepository) List(ctx context.Context) ([]*model.CampaignCallerIDSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CampaignCallerIDSettings), args.Error(1)
}

func TestPoolService_Create(t *testing.T) {
	poolRepo := new(MockPoolRepository)
	svc := NewPoolService(poolRepo, new(MockSettingsRepository))
	ctx := context.Background()

	t.Run("defaults country to CO", func(t *testing.T) {
		poolRepo.On("Create", ctx, mock.MatchedBy(func(p *model.CallerIDPool) bool {
			return p.CountryCode == "CO" && p.IsActive
		})).Return(&model.CallerIDPool{ID: 1, Name: "bogota", CountryCode: "CO"}, nil).Once()

		created, err := svc.Create(ctx, model.PoolCreateRequest{Name: " bogota "})
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, model.PoolCreateRequest{Name: "  "})
		assert.Error(t, err)
	})
}

func TestPoolService_ImportNumbers(t *testing.T) {
	ctx := context.Background()

	t.Run("counts invalid, duplicate and inserted", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		svc := NewPoolService(poolRepo, new(MockSettingsRepository))

		poolRepo.On("Get", ctx, int64(1)).Return(&model.CallerIDPool{ID: 1, CountryCode: "CO", IsActive: true}, nil)
		poolRepo.On("InsertNumbers", ctx, mock.MatchedBy(func(numbers []*model.PoolNumber) bool {
			return len(numbers) == 2 && numbers[0].AreaCode == "305"
		})).Return(1, nil) // one already in the pool

		raw := "3051234567\n305-123-4567,abc;3052222222"
		result, err := svc.ImportNumbers(ctx, 1, raw)
		require.NoError(t, err)

		assert.Equal(t, 4, result.Found)
		assert.Equal(t, 1, result.Invalid)  // "abc"
		assert.Equal(t, 1, result.Inserted) // db kept one of the two
		assert.Equal(t, 2, result.Skipped)  // in-batch dup + db dup
	})

	t.Run("empty payload", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		svc := NewPoolService(poolRepo, new(MockSettingsRepository))

		poolRepo.On("Get", ctx, int64(1)).Return(&model.CallerIDPool{ID: 1, CountryCode: "CO"}, nil)

		_, err := svc.ImportNumbers(ctx, 1, " \n ; , ")
		assert.ErrorIs(t, err, ErrEmptyImport)
	})

	t.Run("unknown pool", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		svc := NewPoolService(poolRepo, new(MockSettingsRepository))

		poolRepo.On("Get", ctx, int64(9)).Return(nil, repository.ErrNotFound)

		_, err := svc.ImportNumbers(ctx, 9, "3051234567")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPoolService_AddNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("cleans and derives the area code", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		svc := NewPoolService(poolRepo, new(MockSettingsRepository))

		poolRepo.On("Get", ctx, int64(1)).Return(&model.CallerIDPool{ID: 1, CountryCode: "CO", IsActive: true}, nil)
		poolRepo.On("InsertNumber", ctx, mock.MatchedBy(func(n *model.PoolNumber) bool {
			return n.CallerID == "3051234567" && n.AreaCode == "305" && n.IsActive
		})).Return(&model.PoolNumber{ID: 10, PoolID: 1, CallerID: "3051234567", AreaCode: "305"}, nil)

		number, err := svc.AddNumber(ctx, 1, "305-123-4567")
		require.NoError(t, err)
		assert.Equal(t, int64(10), number.ID)
		poolRepo.AssertExpectations(t)
	})

	t.Run("rejects a number outside the country rule", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		svc := NewPoolService(poolRepo, new(MockSettingsRepository))

		poolRepo.On("Get", ctx, int64(1)).Return(&model.CallerIDPool{ID: 1, CountryCode: "CO"}, nil)

		_, err := svc.AddNumber(ctx, 1, "1234567890")
		assert.ErrorIs(t, err, ErrInvalidNumber)
		poolRepo.AssertNotCalled(t, "InsertNumber", mock.Anything, mock.Anything)
	})

	t.Run("duplicate surfaces as conflict", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		svc := NewPoolService(poolRepo, new(MockSettingsRepository))

		poolRepo.On("Get", ctx, int64(1)).Return(&model.CallerIDPool{ID: 1, CountryCode: "CO"}, nil)
		poolRepo.On("InsertNumber", ctx, mock.Anything).Return(nil, repository.ErrDuplicateNumber)

		_, err := svc.AddNumber(ctx, 1, "3051234567")
		assert.ErrorIs(t, err, ErrDuplicateNumber)
	})
}

func TestPoolService_UpsertSettings(t *testing.T) {
	ctx := context.Background()
	poolID := int64(5)

	t.Run("pool must exist for POOL mode", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		svc := NewPoolService(poolRepo, new(MockSettingsRepository))

		poolRepo.On("Get", ctx, poolID).Return(nil, repository.ErrNotFound)

		_, err := svc.UpsertSettings(ctx, model.SettingsUpsertRequest{
			CampaignID:   "VENTAS01",
			RotationMode: model.RotationModePool,
			PoolID:       &poolID,
			MatchMode:    model.MatchModeLead,
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("defaults applied", func(t *testing.T) {
		poolRepo := new(MockPoolRepository)
		settingsRepo := new(MockSettingsRepository)
		svc := NewPoolService(poolRepo, settingsRepo)

		poolRepo.On("Get", ctx, poolID).Return(&model.CallerIDPool{ID: poolID, IsActive: true}, nil)
		settingsRepo.On("Upsert", ctx, mock.MatchedBy(func(s *model.CampaignCallerIDSettings) bool {
			return s.MatchMode == model.MatchModeLead && s.SelectionStrategy == model.StrategyRoundRobin
		})).Return(&model.CampaignCallerIDSettings{CampaignID: "VENTAS01"}, nil)

		_, err := svc.UpsertSettings(ctx, model.SettingsUpsertRequest{
			CampaignID:   "VENTAS01",
			RotationMode: model.RotationModePool,
			PoolID:       &poolID,
		})
		require.NoError(t, err)
		settingsRepo.AssertExpectations(t)
	})

	t.Run("validation failures", func(t *testing.T) {
		svc := NewPoolService(new(MockPoolRepository), new(MockSettingsRepository))

		_, err := svc.UpsertSettings(ctx, model.SettingsUpsertRequest{
			CampaignID:   "VENTAS01",
			RotationMode: model.RotationModePool, // pool_id missing
		})
		assert.Error(t, err)

		_, err = svc.UpsertSettings(ctx, model.SettingsUpsertRequest{
			CampaignID:    "VENTAS01",
			RotationMode:  model.RotationModeOff,
			MatchMode:     model.MatchModeFixed,
			FixedAreaCode: "60", // must be 3 digits
		})
		assert.Error(t, err)
	})
}

func TestPoolService_GetSettings_Unconfigured(t *testing.T) {
	settingsRepo := new(MockSettingsRepository)
	svc := NewPoolService(new(MockPoolRepository), settingsRepo)
	ctx := context.Background()

	settingsRepo.On("GetByCampaign", ctx, "NEW").Return(nil, repository.ErrNotFound)

	settings, err := svc.GetSettings(ctx, "NEW")
	require.NoError(t, err)
	assert.Equal(t, model.RotationModeOff, settings.RotationMode)
	assert.Equal(t, model.MatchModeLead, settings.MatchMode)
}
