package repository

import (
	"time"

	"github.com/gescall/dialer-console/internal/model"
)

type CampaignSettingsEntity struct {
	ID                int64      `db:"id"                 gorm:"primaryKey;autoIncrement;column:id"`
	CampaignID        string     `db:"campaign_id"        gorm:"column:campaign_id;not null;uniqueIndex"`
	RotationMode      string     `db:"rotation_mode"      gorm:"column:rotation_mode;not null;default:OFF"`
	PoolID            *int64     `db:"pool_id"            gorm:"column:pool_id"`
	MatchMode         string     `db:"match_mode"         gorm:"column:match_mode;not null;default:LEAD"`
	FixedAreaCode     string     `db:"fixed_area_code"    gorm:"column:fixed_area_code"`
	FallbackCallerID  string     `db:"fallback_callerid"  gorm:"column:fallback_callerid"`
	SelectionStrategy string     `db:"selection_strategy" gorm:"column:selection_strategy;not null;default:ROUND_ROBIN"`
	UpdatedAt         time.Time  `db:"updated_at"         gorm:"column:updated_at;autoUpdateTime"`
}

func (CampaignSettingsEntity) TableName() string {
	return "campaign_callerid_settings"
}

func toSettingsEntity(m *model.CampaignCallerIDSettings) *CampaignSettingsEntity {
	if m == nil {
		return nil
	}
	return &CampaignSettingsEntity{
		ID:                m.ID,
		CampaignID:        m.CampaignID,
		RotationMode:      string(m.RotationMode),
		PoolID:            m.PoolID,
		MatchMode:         string(m.MatchMode),
		FixedAreaCode:     m.FixedAreaCode,
		FallbackCallerID:  m.FallbackCallerID,
		SelectionStrategy: string(m.SelectionStrategy),
		UpdatedAt:         m.UpdatedAt,
	}
}

func toSettingsModel(e *CampaignSettingsEntity) *model.CampaignCallerIDSettings {
	if e == nil {
		return nil
	}
	return &model.CampaignCallerIDSettings{
		ID:                e.ID,
		CampaignID:        e.CampaignID,
		RotationMode:      model.RotationMode(e.RotationMode),
		PoolID:            e.PoolID,
		MatchMode:         model.MatchMode(e.MatchMode),
		FixedAreaCode:     e.FixedAreaCode,
		FallbackCallerID:  e.FallbackCallerID,
		SelectionStrategy: model.SelectionStrategy(e.SelectionStrategy),
		UpdatedAt:         e.UpdatedAt,
	}
}
