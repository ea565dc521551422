package repository

import (
	"github.com/gescall/dialer-console/internal/model"
)

type CampaignEntity struct {
	CampaignID   string `db:"campaign_id"   gorm:"primaryKey;column:campaign_id"`
	CampaignName string `db:"campaign_name" gorm:"column:campaign_name"`
	Active       string `db:"active"        gorm:"column:active;not null;default:N"`
}

func (CampaignEntity) TableName() string {
	return "campaigns"
}

func toCampaignModel(e *CampaignEntity) *model.Campaign {
	if e == nil {
		return nil
	}
	return &model.Campaign{
		CampaignID:   e.CampaignID,
		CampaignName: e.CampaignName,
		Active:       e.Active,
	}
}

func toCampaignModels(entities []*CampaignEntity) []*model.Campaign {
	if entities == nil {
		return nil
	}
	models := make([]*model.Campaign, len(entities))
	for i, e := range entities {
		models[i] = toCampaignModel(e)
	}
	return models
}

type ListEntity struct {
	ListID     int64  `db:"list_id"     gorm:"primaryKey;column:list_id"`
	ListName   string `db:"list_name"   gorm:"column:list_name"`
	CampaignID string `db:"campaign_id" gorm:"column:campaign_id;index"`
	Active     string `db:"active"      gorm:"column:active;not null;default:N"`
}

func (ListEntity) TableName() string {
	return "lists"
}

func toListModel(e *ListEntity) *model.List {
	if e == nil {
		return nil
	}
	return &model.List{
		ListID:     e.ListID,
		ListName:   e.ListName,
		CampaignID: e.CampaignID,
		Active:     e.Active,
	}
}

func toListModels(entities []*ListEntity) []*model.List {
	if entities == nil {
		return nil
	}
	models := make([]*model.List, len(entities))
	for i, e := range entities {
		models[i] = toListModel(e)
	}
	return models
}
