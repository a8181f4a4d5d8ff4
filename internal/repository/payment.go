package repository

import (
	"context"
	"mediastore-checkout/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByID(ctx context.Context, tx *gorm.DB, paymentID uint) (*model.Payment, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, paymentID uint) (*model.Payment, error)
	IncrementAttempts(ctx context.Context, tx *gorm.DB, paymentID uint) error
	MarkFailed(ctx context.Context, tx *gorm.DB, paymentID uint, reason string) error
	MarkSucceeded(ctx context.Context, tx *gorm.DB, paymentID uint, snapshot *model.OrderSnapshot) error
	CountByOrder(ctx context.Context, tx *gorm.DB, orderID uint) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Payment, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, paymentID uint) (*model.Payment, error) {
	var payment model.Payment
	err := tx.WithContext(ctx).
		Where("id = ?", paymentID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// FindByIDForUpdate takes a row lock where the dialect supports one.
func (r *paymentRepoImpl) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, paymentID uint) (*model.Payment, error) {
	var payment model.Payment
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", paymentID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) IncrementAttempts(ctx context.Context, tx *gorm.DB, paymentID uint) error {
	return tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND status = ?", paymentID, model.PaymentStatusInitiated).
		Updates(map[string]interface{}{
			"otp_attempts": gorm.Expr("otp_attempts + 1"),
			"updated_at":   time.Now(),
		}).Error
}

func (r *paymentRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, paymentID uint, reason string) error {
	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND status = ?", paymentID, model.PaymentStatusInitiated).
		Updates(map[string]interface{}{
			"status":         model.PaymentStatusFailed,
			"failure_reason": reason,
			"completed_at":   time.Now(),
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// MarkSucceeded only moves a payment out of initiated; a payment already
// settled by a concurrent confirmation yields gorm.ErrRecordNotFound.
func (r *paymentRepoImpl) MarkSucceeded(ctx context.Context, tx *gorm.DB, paymentID uint, snapshot *model.OrderSnapshot) error {
	now := time.Now()
	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND status = ?", paymentID, model.PaymentStatusInitiated).
		Select("status", "snapshot", "completed_at", "updated_at").
		Updates(&model.Payment{
			Status:      model.PaymentStatusSuccess,
			Snapshot:    snapshot,
			CompletedAt: &now,
			UpdatedAt:   now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *paymentRepoImpl) CountByOrder(ctx context.Context, tx *gorm.DB, orderID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("order_id = ?", orderID).
		Count(&count).Error

	return count, err
}

func (r *paymentRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&payments).Error

	if err != nil {
		return nil, err
	}

	return payments, nil
}
