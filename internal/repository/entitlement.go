package repository

import (
	"context"
	"mediastore-checkout/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntitlementRepository interface {
	Insert(ctx context.Context, tx *gorm.DB, entitlement *model.Entitlement) error
	Exists(ctx context.Context, userID string, productID uint) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Entitlement, error)
}

type entitlementRepoImpl struct {
	db *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) EntitlementRepository {
	return &entitlementRepoImpl{
		db: db,
	}
}

// Insert is insert-if-absent: an existing (user, product) row is left as is.
func (r *entitlementRepoImpl) Insert(ctx context.Context, tx *gorm.DB, entitlement *model.Entitlement) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(entitlement).Error
}

func (r *entitlementRepoImpl) Exists(ctx context.Context, userID string, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Entitlement{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error

	return count > 0, err
}

func (r *entitlementRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Entitlement, error) {
	var entitlements []*model.Entitlement

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, product_id").
		Find(&entitlements).Error
	if err != nil {
		return nil, err
	}

	return entitlements, nil
}
