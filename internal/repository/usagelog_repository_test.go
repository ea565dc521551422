package repository

import (
	"context"
	"testing"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageLogRepository_AppendAndList(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewUsageLogRepository(db)
	ctx := context.Background()

	poolA := int64(1)
	poolB := int64(2)
	entries := []*model.UsageLogEntry{
		{CampaignID: "VENTAS01", LeadID: "100", PhoneNumber: "3051234567", CallerID: "3059999999", AreaCodeTarget: "305", PoolID: &poolA, Result: model.ResultMatched, Strategy: model.StrategyRoundRobin},
		{CampaignID: "VENTAS01", LeadID: "101", PhoneNumber: "3101234567", CallerID: "3050000000", AreaCodeTarget: "310", PoolID: &poolA, Result: model.ResultFallback, Strategy: model.StrategyRoundRobin},
		{CampaignID: "COBROS02", LeadID: "102", PhoneNumber: "3201234567", CallerID: "", AreaCodeTarget: "320", PoolID: &poolB, Result: model.ResultNoMatch, Strategy: model.StrategyLRU},
	}
	for _, e := range entries {
		created, err := repo.Append(ctx, e)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.NotZero(t, created.CreatedAt)
	}

	t.Run("filter by campaign", func(t *testing.T) {
		campaign := "VENTAS01"
		got, total, err := repo.List(ctx, model.UsageLogFilter{CampaignID: &campaign})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, got, 2)
	})

	t.Run("filter by pool", func(t *testing.T) {
		got, total, err := repo.List(ctx, model.UsageLogFilter{PoolID: &poolB})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, got, 1)
		assert.Equal(t, model.ResultNoMatch, got[0].Result)
	})

	t.Run("filter by callerid substring", func(t *testing.T) {
		cid := "305999"
		got, total, err := repo.List(ctx, model.UsageLogFilter{CallerID: &cid})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, got, 1)
		assert.Equal(t, "3059999999", got[0].CallerID)
	})

	t.Run("newest first", func(t *testing.T) {
		got, _, err := repo.List(ctx, model.UsageLogFilter{Desc: true})
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i := 0; i < len(got)-1; i++ {
			assert.True(t, got[i].ID > got[i+1].ID)
		}
	})
}
