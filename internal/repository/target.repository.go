package repository

import (
	"context"
	"errors"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/pkg/pg"
	"gorm.io/gorm"
)

// TargetRepository reads and flips the active flag of the shared dialer
// campaign and list tables. The tables are owned by the dialer; nothing
// else in them is ever written from here.
type TargetRepository struct {
	*pg.DB
}

func NewTargetRepository(db *pg.DB) *TargetRepository {
	return &TargetRepository{
		db,
	}
}

func (r *TargetRepository) GetCampaign(ctx context.Context, campaignID string) (*model.Campaign, error) {
	var entity CampaignEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toCampaignModel(&entity), nil
}

func (r *TargetRepository) ListCampaigns(ctx context.Context) ([]*model.Campaign, error) {
	var entities []*CampaignEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("campaign_id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toCampaignModels(entities), nil
}

func (r *TargetRepository) SetCampaignActive(ctx context.Context, campaignID, active string) error {
	res := r.Write(ctx).WithContext(ctx).Model(&CampaignEntity{}).
		Where("campaign_id = ?", campaignID).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TargetRepository) GetList(ctx context.Context, listID string) (*model.List, error) {
	var entity ListEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("list_id = ?", listID).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toListModel(&entity), nil
}

func (r *TargetRepository) ListLists(ctx context.Context, campaignID string) ([]*model.List, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&ListEntity{})
	if campaignID != "" {
		q = q.Where("campaign_id = ?", campaignID)
	}

	var entities []*ListEntity
	if err := q.Order("list_id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toListModels(entities), nil
}

func (r *TargetRepository) SetListActive(ctx context.Context, listID, active string) error {
	res := r.Write(ctx).WithContext(ctx).Model(&ListEntity{}).
		Where("list_id = ?", listID).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
