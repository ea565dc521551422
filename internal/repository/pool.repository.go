package repository

import (
	"context"
	"errors"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateNumber is returned when a callerid is already in the pool.
	ErrDuplicateNumber = errors.New("callerid already exists in pool")
)

type PoolRepository struct {
	*pg.DB
}

func NewPoolRepository(db *pg.DB) *PoolRepository {
	return &PoolRepository{
		db,
	}
}

func (r *PoolRepository) Create(ctx context.Context, pool *model.CallerIDPool) (*model.CallerIDPool, error) {
	entity := toPoolEntity(pool)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toPoolModel(entity), nil
}

func (r *PoolRepository) Get(ctx context.Context, id int64) (*model.CallerIDPool, error) {
	var entity PoolEntity
	err := r.Read(ctx).WithContext(ctx).First(&entity, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	pool := toPoolModel(&entity)
	if err := r.attachCounts(ctx, []*model.CallerIDPool{pool}); err != nil {
		return nil, err
	}
	return pool, nil
}

func (r *PoolRepository) List(ctx context.Context, f model.PoolFilter) ([]*model.CallerIDPool, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&PoolEntity{})

	if f.Search != "" {
		q = q.Where("name LIKE ?", "%"+f.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*PoolEntity
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	pools := toPoolModels(entities)
	if err := r.attachCounts(ctx, pools); err != nil {
		return nil, 0, err
	}
	return pools, total, nil
}

func (r *PoolRepository) Update(ctx context.Context, id int64, req model.PoolUpdateRequest) (*model.CallerIDPool, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CountryCode != nil {
		updates["country_code"] = *req.CountryCode
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		res := r.Write(ctx).WithContext(ctx).Model(&PoolEntity{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	return r.Get(ctx, id)
}

// Delete removes the pool and every number in it. Campaign settings that
// still reference the pool are left alone; selection degrades to the
// campaign default until they are repointed.
func (r *PoolRepository) Delete(ctx context.Context, id int64) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		tx := r.Write(ctx).WithContext(ctx)
		if err := tx.Where("pool_id = ?", id).Delete(&PoolNumberEntity{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&PoolEntity{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// InsertNumbers bulk-inserts numbers into a pool. Rows colliding with an
// existing (pool, callerid) pair are silently dropped; the return value is
// the count actually inserted.
func (r *PoolRepository) InsertNumbers(ctx context.Context, numbers []*model.PoolNumber) (int, error) {
	if len(numbers) == 0 {
		return 0, nil
	}
	entities := make([]*PoolNumberEntity, len(numbers))
	for i, n := range numbers {
		entities[i] = toPoolNumberEntity(n)
	}

	res := r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// InsertNumber inserts a single number, surfacing the (pool, callerid)
// collision as ErrDuplicateNumber instead of dropping it silently.
func (r *PoolRepository) InsertNumber(ctx context.Context, number *model.PoolNumber) (*model.PoolNumber, error) {
	entity := toPoolNumberEntity(number)

	res := r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDuplicateNumber
	}
	return toPoolNumberModel(entity), nil
}

func (r *PoolRepository) ListNumbers(ctx context.Context, f model.PoolNumberFilter) ([]*model.PoolNumber, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&PoolNumberEntity{}).Where("pool_id = ?", f.PoolID)

	if f.Search != "" {
		q = q.Where("callerid LIKE ?", "%"+f.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*PoolNumberEntity
	if err := q.Order("area_code ASC, callerid ASC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toPoolNumberModels(entities), total, nil
}

func (r *PoolRepository) DeleteNumber(ctx context.Context, poolID, numberID int64) error {
	res := r.Write(ctx).WithContext(ctx).
		Where("pool_id = ?", poolID).
		Delete(&PoolNumberEntity{}, numberID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PoolRepository) SetNumberActive(ctx context.Context, poolID, numberID int64, active bool) error {
	res := r.Write(ctx).WithContext(ctx).Model(&PoolNumberEntity{}).
		Where("id = ? AND pool_id = ?", numberID, poolID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AreaCodeSummaries aggregates the pool's numbers per area code.
func (r *PoolRepository) AreaCodeSummaries(ctx context.Context, poolID int64) ([]*model.AreaCodeSummary, error) {
	var summaries []*model.AreaCodeSummary
	err := r.Read(ctx).WithContext(ctx).Model(&PoolNumberEntity{}).
		Select("area_code, COUNT(*) AS total, SUM(CASE WHEN is_active THEN 1 ELSE 0 END) AS active").
		Where("pool_id = ?", poolID).
		Group("area_code").
		Order("area_code ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

type poolCountRow struct {
	PoolID int64 `gorm:"column:pool_id"`
	Total  int64 `gorm:"column:total"`
	Active int64 `gorm:"column:active"`
}

func (r *PoolRepository) attachCounts(ctx context.Context, pools []*model.CallerIDPool) error {
	if len(pools) == 0 {
		return nil
	}
	ids := make([]int64, len(pools))
	for i, p := range pools {
		ids[i] = p.ID
	}

	var rows []poolCountRow
	err := r.Read(ctx).WithContext(ctx).Model(&PoolNumberEntity{}).
		Select("pool_id, COUNT(*) AS total, SUM(CASE WHEN is_active THEN 1 ELSE 0 END) AS active").
		Where("pool_id IN ?", ids).
		Group("pool_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	byID := make(map[int64]poolCountRow, len(rows))
	for _, row := range rows {
		byID[row.PoolID] = row
	}
	for _, p := range pools {
		if row, ok := byID[p.ID]; ok {
			p.TotalNumbers = row.Total
			p.ActiveNumbers = row.Active
		}
	}
	return nil
}
