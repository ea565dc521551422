package model

import (
	"errors"
	"time"
)

type RotationMode string

const (
	RotationModeOff  RotationMode = "OFF"
	RotationModePool RotationMode = "POOL"
)

type MatchMode string

const (
	MatchModeLead  MatchMode = "LEAD"
	MatchModeFixed MatchMode = "FIXED"
)

type SelectionStrategy string

const (
	StrategyRoundRobin SelectionStrategy = "ROUND_ROBIN"
	StrategyRandom     SelectionStrategy = "RANDOM"
	StrategyLRU        SelectionStrategy = "LRU"
)

// SelectionResult classifies the outcome of one caller-ID selection.
type SelectionResult string

const (
	// ResultMatched - a pool number matching the target area code was picked.
	ResultMatched SelectionResult = "MATCHED"
	// ResultFallback - no match; the configured fallback caller-ID was used.
	ResultFallback SelectionResult = "FALLBACK"
	// ResultDefault - rotation off, unconfigured, or store failure; the
	// campaign's own default caller-ID applies.
	ResultDefault SelectionResult = "DEFAULT"
	// ResultNoMatch - rotation on, no eligible candidate and no fallback.
	ResultNoMatch SelectionResult = "NO_MATCH"
)

// CampaignCallerIDSettings configures rotation for one campaign. Absence
// of a row means rotation is OFF for that campaign.
type CampaignCallerIDSettings struct {
	ID                int64             `json:"id"                 db:"id"                 gorm:"primaryKey;autoIncrement;column:id"`
	CampaignID        string            `json:"campaign_id"        db:"campaign_id"        gorm:"column:campaign_id;not null;uniqueIndex"`
	RotationMode      RotationMode      `json:"rotation_mode"      db:"rotation_mode"      gorm:"column:rotation_mode;not null;default:OFF"`
	PoolID            *int64            `json:"pool_id"            db:"pool_id"            gorm:"column:pool_id"`
	MatchMode         MatchMode         `json:"match_mode"         db:"match_mode"         gorm:"column:match_mode;not null;default:LEAD"`
	FixedAreaCode     string            `json:"fixed_area_code"    db:"fixed_area_code"    gorm:"column:fixed_area_code"`
	FallbackCallerID  string            `json:"fallback_callerid"  db:"fallback_callerid"  gorm:"column:fallback_callerid"`
	SelectionStrategy SelectionStrategy `json:"selection_strategy" db:"selection_strategy" gorm:"column:selection_strategy;not null;default:ROUND_ROBIN"`
	UpdatedAt         time.Time         `json:"updated_at"         db:"updated_at"         gorm:"column:updated_at;autoUpdateTime"`
}

func (CampaignCallerIDSettings) TableName() string { return "campaign_callerid_settings" }

type SettingsUpsertRequest struct {
	CampaignID        string
	RotationMode      RotationMode
	PoolID            *int64
	MatchMode         MatchMode
	FixedAreaCode     string
	FallbackCallerID  string
	SelectionStrategy SelectionStrategy
}

func (r SettingsUpsertRequest) Validate() error {
	if r.CampaignID == "" {
		return errors.New("campaign_id is required")
	}
	switch r.RotationMode {
	case RotationModeOff, RotationModePool:
	default:
		return errors.New("rotation_mode must be OFF or POOL")
	}
	if r.RotationMode == RotationModePool && r.PoolID == nil {
		return errors.New("pool_id is required when rotation_mode is POOL")
	}
	switch r.MatchMode {
	case MatchModeLead, MatchModeFixed, "":
	default:
		return errors.New("match_mode must be LEAD or FIXED")
	}
	if r.MatchMode == MatchModeFixed && len(r.FixedAreaCode) != 3 {
		return errors.New("fixed_area_code must be exactly 3 digits")
	}
	switch r.SelectionStrategy {
	case StrategyRoundRobin, StrategyRandom, StrategyLRU, "":
	default:
		return errors.New("selection_strategy must be ROUND_ROBIN, RANDOM or LRU")
	}
	return nil
}

// Selection is the answer handed back to the call-setup path. An empty
// CallerID means "let the campaign's default caller-ID apply".
type Selection struct {
	CallerID       string            `json:"callerid"`
	Result         SelectionResult   `json:"result"`
	AreaCodeTarget string            `json:"area_code_target"`
	PoolID         *int64            `json:"pool_id,omitempty"`
	Strategy       SelectionStrategy `json:"strategy,omitempty"`
}
