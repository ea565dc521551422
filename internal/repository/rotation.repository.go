package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gescall/dialer-console/internal/model"
	"github.com/gescall/dialer-console/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrNoCandidate is returned when a (pool, area code) group has no
	// active number to hand out.
	ErrNoCandidate = errors.New("no eligible caller-id in group")
)

// RotationRepository holds the selection queries against the pool number
// table. Every pick updates the usage bookkeeping of the chosen row in the
// same transaction, so a crash between pick and bookkeeping cannot hand
// out a number without accounting for it.
type RotationRepository struct {
	*pg.DB
}

func NewRotationRepository(db *pg.DB) *RotationRepository {
	return &RotationRepository{
		db,
	}
}

// ClaimRoundRobin picks the head of the (pool, area code) rotation order
// and moves it to the tail: the lowest rr_order wins, then the row is
// reassigned max(rr_order)+1 within its group. Bookkeeping and reorder
// happen in one transaction. Callers serialize concurrent claims per
// group; this method does not lock rows itself.
func (r *RotationRepository) ClaimRoundRobin(ctx context.Context, poolID int64, areaCode string) (*model.PoolNumber, error) {
	var picked *model.PoolNumber

	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		tx := r.Write(ctx).WithContext(ctx)

		var entity PoolNumberEntity
		err := tx.
			Where("pool_id = ? AND area_code = ? AND is_active = ?", poolID, areaCode, true).
			Order("rr_order ASC, id ASC").
			First(&entity).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoCandidate
		}
		if err != nil {
			return err
		}

		var maxOrder int64
		err = tx.Model(&PoolNumberEntity{}).
			Where("pool_id = ? AND area_code = ?", poolID, areaCode).
			Select("COALESCE(MAX(rr_order), 0)").
			Scan(&maxOrder).Error
		if err != nil {
			return err
		}

		now := time.Now()
		err = tx.Model(&PoolNumberEntity{}).
			Where("id = ?", entity.ID).
			Updates(map[string]interface{}{
				"rr_order":     maxOrder + 1,
				"use_count":    gorm.Expr("use_count + 1"),
				"last_used_at": now,
			}).Error
		if err != nil {
			return err
		}

		entity.RROrder = maxOrder + 1
		entity.UseCount++
		entity.LastUsedAt = &now
		picked = toPoolNumberModel(&entity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return picked, nil
}

// ClaimRandom picks a uniformly random active number of the group and
// records the use. The rotation order is left untouched.
func (r *RotationRepository) ClaimRandom(ctx context.Context, poolID int64, areaCode string) (*model.PoolNumber, error) {
	return r.claimOrdered(ctx, poolID, areaCode, "RANDOM()")
}

// ClaimLRU picks the number idle the longest, never-used rows first, ties
// broken by lowest id.
func (r *RotationRepository) ClaimLRU(ctx context.Context, poolID int64, areaCode string) (*model.PoolNumber, error) {
	// (last_used_at IS NOT NULL) sorts NULLs first on both postgres
	// and sqlite, which lack a shared NULLS FIRST spelling.
	return r.claimOrdered(ctx, poolID, areaCode, "(last_used_at IS NOT NULL), last_used_at ASC, id ASC")
}

func (r *RotationRepository) claimOrdered(ctx context.Context, poolID int64, areaCode, order string) (*model.PoolNumber, error) {
	var picked *model.PoolNumber

	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		tx := r.Write(ctx).WithContext(ctx)

		var entity PoolNumberEntity
		err := tx.
			Where("pool_id = ? AND area_code = ? AND is_active = ?", poolID, areaCode, true).
			Order(order).
			First(&entity).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoCandidate
		}
		if err != nil {
			return err
		}

		now := time.Now()
		err = tx.Model(&PoolNumberEntity{}).
			Where("id = ?", entity.ID).
			Updates(map[string]interface{}{
				"use_count":    gorm.Expr("use_count + 1"),
				"last_used_at": now,
			}).Error
		if err != nil {
			return err
		}

		entity.UseCount++
		entity.LastUsedAt = &now
		picked = toPoolNumberModel(&entity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return picked, nil
}
