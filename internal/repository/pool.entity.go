package repository

import (
	"time"

	"github.com/gescall/dialer-console/internal/model"
)

type PoolEntity struct {
	ID          int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	Name        string    `db:"name"         gorm:"column:name;not null;uniqueIndex"`
	Description string    `db:"description"  gorm:"column:description"`
	CountryCode string    `db:"country_code" gorm:"column:country_code;not null;default:CO"`
	IsActive    bool      `db:"is_active"    gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `db:"updated_at"   gorm:"column:updated_at;autoUpdateTime"`
}

func (PoolEntity) TableName() string {
	return "callerid_pools"
}

func toPoolEntity(m *model.CallerIDPool) *PoolEntity {
	if m == nil {
		return nil
	}
	return &PoolEntity{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CountryCode: m.CountryCode,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toPoolModel(e *PoolEntity) *model.CallerIDPool {
	if e == nil {
		return nil
	}
	return &model.CallerIDPool{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		CountryCode: e.CountryCode,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toPoolModels(entities []*PoolEntity) []*model.CallerIDPool {
	if entities == nil {
		return nil
	}
	models := make([]*model.CallerIDPool, len(entities))
	for i, e := range entities {
		models[i] = toPoolModel(e)
	}
	return models
}

// PoolNumberEntity rows are unique per (pool_id, callerid) so a bulk
// import can rely on ON CONFLICT DO NOTHING for duplicates.
type PoolNumberEntity struct {
	ID         int64      `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	PoolID     int64      `db:"pool_id"      gorm:"column:pool_id;not null;index;uniqueIndex:idx_pool_callerid"`
	CallerID   string     `db:"callerid"     gorm:"column:callerid;not null;uniqueIndex:idx_pool_callerid"`
	AreaCode   string     `db:"area_code"    gorm:"column:area_code;not null;index"`
	IsActive   bool       `db:"is_active"    gorm:"column:is_active;not null;default:true"`
	RROrder    int64      `db:"rr_order"     gorm:"column:rr_order;not null;default:0"`
	LastUsedAt *time.Time `db:"last_used_at" gorm:"column:last_used_at"`
	UseCount   int64      `db:"use_count"    gorm:"column:use_count;not null;default:0"`
	CreatedAt  time.Time  `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (PoolNumberEntity) TableName() string {
	return "callerid_pool_numbers"
}

func toPoolNumberEntity(m *model.PoolNumber) *PoolNumberEntity {
	if m == nil {
		return nil
	}
	return &PoolNumberEntity{
		ID:         m.ID,
		PoolID:     m.PoolID,
		CallerID:   m.CallerID,
		AreaCode:   m.AreaCode,
		IsActive:   m.IsActive,
		RROrder:    m.RROrder,
		LastUsedAt: m.LastUsedAt,
		UseCount:   m.UseCount,
		CreatedAt:  m.CreatedAt,
	}
}

func toPoolNumberModel(e *PoolNumberEntity) *model.PoolNumber {
	if e == nil {
		return nil
	}
	return &model.PoolNumber{
		ID:         e.ID,
		PoolID:     e.PoolID,
		CallerID:   e.CallerID,
		AreaCode:   e.AreaCode,
		IsActive:   e.IsActive,
		RROrder:    e.RROrder,
		LastUsedAt: e.LastUsedAt,
		UseCount:   e.UseCount,
		CreatedAt:  e.CreatedAt,
	}
}

func toPoolNumberModels(entities []*PoolNumberEntity) []*model.PoolNumber {
	if entities == nil {
		return nil
	}
	models := make([]*model.PoolNumber, len(entities))
	for i, e := range entities {
		models[i] = toPoolNumberModel(e)
	}
	return models
}
