package repository

import (
	"context"
	"errors"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	*pg.DB
}

func NewSettingsRepository(db *pg.DB) *SettingsRepository {
	return &SettingsRepository{
		db,
	}
}

// GetByCampaign returns the rotation settings row for a campaign.
// ErrNotFound means the campaign was never configured, which callers
// treat as rotation OFF.
func (r *SettingsRepository) GetByCampaign(ctx context.Context, campaignID string) (*model.CampaignCallerIDSettings, error) {
	var entity CampaignSettingsEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toSettingsModel(&entity), nil
}

// Upsert writes the full settings row for a campaign, replacing whatever
// was there. Last writer wins.
func (r *SettingsRepository) Upsert(ctx context.Context, s *model.CampaignCallerIDSettings) (*model.CampaignCallerIDSettings, error) {
	entity := toSettingsEntity(s)
	entity.ID = 0

	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "campaign_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"rotation_mode",
				"pool_id",
				"match_mode",
				"fixed_area_code",
				"fallback_callerid",
				"selection_strategy",
				"updated_at",
			}),
		}).
		Create(entity).Error
	if err != nil {
		return nil, err
	}

	return r.GetByCampaign(ctx, s.CampaignID)
}

func (r *SettingsRepository) Delete(ctx context.Context, campaignID string) error {
	res := r.Write(ctx).WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Delete(&CampaignSettingsEntity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every configured campaign, for the settings overview page.
func (r *SettingsRepository) List(ctx context.Context) ([]*model.CampaignCallerIDSettings, error) {
	var entities []*CampaignSettingsEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("campaign_id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	models := make([]*model.CampaignCallerIDSettings, len(entities))
	for i, e := range entities {
		models[i] = toSettingsModel(e)
	}
	return models, nil
}
