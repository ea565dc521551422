package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRotationService struct {
	mock.Mock
}

func (m *MockRotationService) Select(ctx context.Context, campaignID, leadPhone, leadID string) model.Selection {
	args := m.Called(ctx, campaignID, leadPhone, leadID)
	return args.Get(0).(model.Selection)
}

func (m *MockRotationService) ListUsage(ctx context.Context, f model.UsageLogFilter) ([]*model.UsageLogEntry, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.UsageLogEntry), args.Get(1).(int64), args.Error(2)
}

func TestRotationHandler_SelectCallerID(t *testing.T) {
	t.Run("missing campaign_id", func(t *testing.T) {
		handler := NewRotationHandler(new(MockRotationService))

		ctx := setupTestContext("GET", "/api/v1/rotation/select?phone=3051234567", nil)
		handler.SelectCallerID(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("always answers 200", func(t *testing.T) {
		svc := new(MockRotationService)
		handler := NewRotationHandler(svc)

		svc.On("Select", mock.Anything, "VENTAS01", "3051234567", "100").
			Return(model.Selection{CallerID: "3059999999", Result: model.ResultMatched, AreaCodeTarget: "305"})

		ctx := setupTestContext("GET", "/api/v1/rotation/select?campaign_id=VENTAS01&phone=3051234567&lead_id=100", nil)
		handler.SelectCallerID(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var sel model.Selection
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &sel))
		assert.Equal(t, model.ResultMatched, sel.Result)
		assert.Equal(t, "3059999999", sel.CallerID)
	})
}

func TestRotationHandler_ListUsageLog(t *testing.T) {
	svc := new(MockRotationService)
	handler := NewRotationHandler(svc)

	svc.On("List", mock.Anything, mock.Anything).Maybe()
	svc.On("ListUsage", mock.Anything, mock.MatchedBy(func(f model.UsageLogFilter) bool {
		return f.CampaignID != nil && *f.CampaignID == "VENTAS01" && f.Desc
	})).Return([]*model.UsageLogEntry{{ID: 1}}, int64(1), nil)

	ctx := setupTestContext("GET", "/api/v1/usage-log?campaign_id=VENTAS01&desc=true", nil)
	handler.ListUsageLog(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var resp usageListResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, int64(1), resp.Total)
}
