package repository

import (
	"context"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/pkg/pg"
)

type UsageLogRepository struct {
	*pg.DB
}

func NewUsageLogRepository(db *pg.DB) *UsageLogRepository {
	return &UsageLogRepository{
		db,
	}
}

// Append writes one selection record. The log is append-only; nothing in
// the codebase updates or deletes these rows.
func (r *UsageLogRepository) Append(ctx context.Context, entry *model.UsageLogEntry) (*model.UsageLogEntry, error) {
	entity := toUsageLogEntity(entry)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toUsageLogModel(entity), nil
}

func (r *UsageLogRepository) List(ctx context.Context, f model.UsageLogFilter) ([]*model.UsageLogEntry, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&UsageLogEntity{})

	if f.PoolID != nil {
		q = q.Where("pool_id = ?", *f.PoolID)
	}
	if f.CampaignID != nil && *f.CampaignID != "" {
		q = q.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.CallerID != nil && *f.CallerID != "" {
		q = q.Where("callerid LIKE ?", "%"+*f.CallerID+"%")
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*UsageLogEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toUsageLogModels(entities), total, nil
}
