package model

// Active flag values used by the shared dialer tables.
const (
	ActiveYes = "Y"
	ActiveNo  = "N"
)

// Campaign mirrors the columns of the shared dialer campaigns table that
// the console reads and writes. The table is owned by the dialer; only
// the active flag is ever written here.
type Campaign struct {
	CampaignID   string `json:"campaign_id"   db:"campaign_id"   gorm:"primaryKey;column:campaign_id"`
	CampaignName string `json:"campaign_name" db:"campaign_name" gorm:"column:campaign_name"`
	Active       string `json:"active"        db:"active"        gorm:"column:active;not null;default:N"`
}

func (Campaign) TableName() string { return "campaigns" }

// List mirrors the shared dialer lists table.
type List struct {
	ListID     int64  `json:"list_id"     db:"list_id"     gorm:"primaryKey;column:list_id"`
	ListName   string `json:"list_name"   db:"list_name"   gorm:"column:list_name"`
	CampaignID string `json:"campaign_id" db:"campaign_id" gorm:"column:campaign_id;index"`
	Active     string `json:"active"      db:"active"      gorm:"column:active;not null;default:N"`
}

func (List) TableName() string { return "lists" }
