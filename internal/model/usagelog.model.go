package model

import "time"

// UsageLogEntry records one caller-ID selection decision. Rows are
// append-only: written exclusively by the rotation selector, never
// mutated or deleted.
type UsageLogEntry struct {
	ID             int64             `json:"id"               db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	CampaignID     string            `json:"campaign_id"      db:"campaign_id"      gorm:"column:campaign_id;index"`
	LeadID         string            `json:"lead_id"          db:"lead_id"          gorm:"column:lead_id"`
	PhoneNumber    string            `json:"phone_number"     db:"phone_number"     gorm:"column:phone_number"`
	CallerID       string            `json:"callerid"         db:"callerid"         gorm:"column:callerid"`
	AreaCodeTarget string            `json:"area_code_target" db:"area_code_target" gorm:"column:area_code_target"`
	PoolID         *int64            `json:"pool_id"          db:"pool_id"          gorm:"column:pool_id;index"`
	Result         SelectionResult   `json:"selection_result" db:"selection_result" gorm:"column:selection_result;not null"`
	Strategy       SelectionStrategy `json:"strategy"         db:"strategy"         gorm:"column:strategy"`
	CreatedAt      time.Time         `json:"created_at"       db:"created_at"       gorm:"column:created_at;autoCreateTime;index"`
}

func (UsageLogEntry) TableName() string { return "callerid_usage_log" }

// UsageLogFilter controls usage-log queries.
type UsageLogFilter struct {
	PoolID     *int64
	CampaignID *string
	CallerID   *string // substring match
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
	Desc       bool
}
