package model

import (
	"errors"
	"strings"
	"time"
)

// CallerIDPool is a named collection of caller-ID numbers eligible for
// presentation on outbound calls. The country code selects the validation
// rule applied to every number imported into the pool.
type CallerIDPool struct {
	ID          int64     `json:"id"           db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	Name        string    `json:"name"         db:"name"         gorm:"column:name;not null;uniqueIndex"`
	Description string    `json:"description"  db:"description"  gorm:"column:description"`
	CountryCode string    `json:"country_code" db:"country_code" gorm:"column:country_code;not null;default:CO"`
	IsActive    bool      `json:"is_active"    db:"is_active"    gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"   gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at"   db:"updated_at"   gorm:"column:updated_at;autoUpdateTime"`

	TotalNumbers  int64 `json:"total_numbers"  gorm:"-"`
	ActiveNumbers int64 `json:"active_numbers" gorm:"-"`
}

func (CallerIDPool) TableName() string { return "callerid_pools" }

// PoolNumber is one caller-ID inside a pool. AreaCode is always derived
// from the first 3 digits of CallerID, never supplied by callers.
// RROrder totally orders the active numbers of a (pool, area code) group;
// a round-robin pick moves the chosen number to the tail of that order.
type PoolNumber struct {
	ID         int64      `json:"id"           db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	PoolID     int64      `json:"pool_id"      db:"pool_id"      gorm:"column:pool_id;not null;index"`
	CallerID   string     `json:"callerid"     db:"callerid"     gorm:"column:callerid;not null"`
	AreaCode   string     `json:"area_code"    db:"area_code"    gorm:"column:area_code;not null;index"`
	IsActive   bool       `json:"is_active"    db:"is_active"    gorm:"column:is_active;not null;default:true"`
	RROrder    int64      `json:"rr_order"     db:"rr_order"     gorm:"column:rr_order;not null;default:0"`
	LastUsedAt *time.Time `json:"last_used_at" db:"last_used_at" gorm:"column:last_used_at"`
	UseCount   int64      `json:"use_count"    db:"use_count"    gorm:"column:use_count;not null;default:0"`
	CreatedAt  time.Time  `json:"created_at"   db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (PoolNumber) TableName() string { return "callerid_pool_numbers" }

type PoolCreateRequest struct {
	Name        string
	Description string
	CountryCode string
}

func (p PoolCreateRequest) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// PoolUpdateRequest carries partial pool updates; nil fields are left
// untouched.
type PoolUpdateRequest struct {
	Name        *string
	Description *string
	CountryCode *string
	IsActive    *bool
}

type PoolFilter struct {
	Search string // matches pool name, substring
	Limit  int
	Offset int
}

type PoolNumberFilter struct {
	PoolID int64
	Search string // matches callerid, substring
	Limit  int
	Offset int
}

// ImportResult reports the outcome of a bulk number import. Duplicates
// across batches are skipped, not errors; the batch never aborts
// wholesale.
type ImportResult struct {
	Found    int `json:"total_found"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Invalid  int `json:"invalid"`
}

// AreaCodeSummary aggregates one (pool, area code) group.
type AreaCodeSummary struct {
	AreaCode string `json:"area_code" gorm:"column:area_code"`
	Total    int64  `json:"total"     gorm:"column:total"`
	Active   int64  `json:"active"    gorm:"column:active"`
}
