package repository

import (
	"context"
	"testing"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_Upsert(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	t.Run("unconfigured campaign", func(t *testing.T) {
		_, err := repo.GetByCampaign(ctx, "UNKNOWN")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	poolID := int64(7)
	first, err := repo.Upsert(ctx, &model.CampaignCallerIDSettings{
		CampaignID:        "VENTAS01",
		RotationMode:      model.RotationModePool,
		PoolID:            &poolID,
		MatchMode:         model.MatchModeLead,
		SelectionStrategy: model.StrategyRoundRobin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RotationModePool, first.RotationMode)
	require.NotNil(t, first.PoolID)
	assert.Equal(t, poolID, *first.PoolID)

	t.Run("second upsert replaces the row", func(t *testing.T) {
		updated, err := repo.Upsert(ctx, &model.CampaignCallerIDSettings{
			CampaignID:        "VENTAS01",
			RotationMode:      model.RotationModePool,
			PoolID:            &poolID,
			MatchMode:         model.MatchModeFixed,
			FixedAreaCode:     "305",
			FallbackCallerID:  "3050000000",
			SelectionStrategy: model.StrategyLRU,
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, updated.ID)
		assert.Equal(t, model.MatchModeFixed, updated.MatchMode)
		assert.Equal(t, "305", updated.FixedAreaCode)
		assert.Equal(t, model.StrategyLRU, updated.SelectionStrategy)
	})

	t.Run("list configured campaigns", func(t *testing.T) {
		_, err := repo.Upsert(ctx, &model.CampaignCallerIDSettings{
			CampaignID:   "COBROS02",
			RotationMode: model.RotationModeOff,
			MatchMode:    model.MatchModeLead,
		})
		require.NoError(t, err)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "COBROS02", all[0].CampaignID)
		assert.Equal(t, "VENTAS01", all[1].CampaignID)
	})

	t.Run("delete settings", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "COBROS02"))
		assert.ErrorIs(t, repo.Delete(ctx, "COBROS02"), ErrNotFound)
	})
}
