package repository

import (
	"time"

	"github.com/gescall/dialer-console/internal/model"
)

type UsageLogEntity struct {
	ID             int64      `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	CampaignID     string     `db:"campaign_id"      gorm:"column:campaign_id;index"`
	LeadID         string     `db:"lead_id"          gorm:"column:lead_id"`
	PhoneNumber    string     `db:"phone_number"     gorm:"column:phone_number"`
	CallerID       string     `db:"callerid"         gorm:"column:callerid"`
	AreaCodeTarget string     `db:"area_code_target" gorm:"column:area_code_target"`
	PoolID         *int64     `db:"pool_id"          gorm:"column:pool_id;index"`
	Result         string     `db:"selection_result" gorm:"column:selection_result;not null"`
	Strategy       string     `db:"strategy"         gorm:"column:strategy"`
	CreatedAt      time.Time  `db:"created_at"       gorm:"column:created_at;autoCreateTime;index"`
}

func (UsageLogEntity) TableName() string {
	return "callerid_usage_log"
}

func toUsageLogEntity(m *model.UsageLogEntry) *UsageLogEntity {
	if m == nil {
		return nil
	}
	return &UsageLogEntity{
		ID:             m.ID,
		CampaignID:     m.CampaignID,
		LeadID:         m.LeadID,
		PhoneNumber:    m.PhoneNumber,
		CallerID:       m.CallerID,
		AreaCodeTarget: m.AreaCodeTarget,
		PoolID:         m.PoolID,
		Result:         string(m.Result),
		Strategy:       string(m.Strategy),
		CreatedAt:      m.CreatedAt,
	}
}

func toUsageLogModel(e *UsageLogEntity) *model.UsageLogEntry {
	if e == nil {
		return nil
	}
	return &model.UsageLogEntry{
		ID:             e.ID,
		CampaignID:     e.CampaignID,
		LeadID:         e.LeadID,
		PhoneNumber:    e.PhoneNumber,
		CallerID:       e.CallerID,
		AreaCodeTarget: e.AreaCodeTarget,
		PoolID:         e.PoolID,
		Result:         model.SelectionResult(e.Result),
		Strategy:       model.SelectionStrategy(e.Strategy),
		CreatedAt:      e.CreatedAt,
	}
}

func toUsageLogModels(entities []*UsageLogEntity) []*model.UsageLogEntry {
	if entities == nil {
		return nil
	}
	models := make([]*model.UsageLogEntry, len(entities))
	for i, e := range entities {
		models[i] = toUsageLogModel(e)
	}
	return models
}
