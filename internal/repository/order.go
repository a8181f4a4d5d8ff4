package repository

import (
	"context"
	"mediastore-checkout/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	FindPending(ctx context.Context, tx *gorm.DB, userID string) (*model.Order, error)
	FindOrCreatePending(ctx context.Context, tx *gorm.DB, userID string) (*model.Order, error)
	FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error)
	UpdateTotal(ctx context.Context, tx *gorm.DB, orderID uint, total int64) error
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint, paymentMethod string) error
	MarkCancelled(ctx context.Context, tx *gorm.DB, orderID uint) error
	Delete(ctx context.Context, tx *gorm.DB, orderID uint) error

	UpsertItem(ctx context.Context, tx *gorm.DB, item *model.OrderItem) error
	FindItem(ctx context.Context, tx *gorm.DB, itemID uint) (*model.OrderItem, error)
	UpdateItemQuantity(ctx context.Context, tx *gorm.DB, itemID uint, quantity int64) error
	DeleteItem(ctx context.Context, tx *gorm.DB, itemID uint) error
	GetOrderItems(ctx context.Context, tx *gorm.DB, orderID uint) ([]*model.OrderItem, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) FindPending(ctx context.Context, tx *gorm.DB, userID string) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("pending_key = ?", userID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

// FindOrCreatePending relies on the unique pending_key index: a concurrent
// insert for the same user turns into a no-op and both callers read back the
// same row. The read back is a locking read so that under REPEATABLE READ it
// sees the row committed by the other caller, not the snapshot of the probe.
func (r *orderRepoImpl) FindOrCreatePending(ctx context.Context, tx *gorm.DB, userID string) (*model.Order, error) {
	var order model.Order
	result := tx.WithContext(ctx).Where("pending_key = ?", userID).Limit(1).Find(&order)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return &order, nil
	}

	key := userID
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pending_key"}},
		DoNothing: true,
	}).Create(&model.Order{
		UserID:     userID,
		PendingKey: &key,
		Status:     model.OrderStatusPending,
	}).Error
	if err != nil {
		return nil, err
	}

	order = model.Order{}
	err = tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pending_key = ?", userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) UpdateTotal(ctx context.Context, tx *gorm.DB, orderID uint, total int64) error {
	return tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"total_amount": total,
			"updated_at":   time.Now(),
		}).Error
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint, paymentMethod string) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":         model.OrderStatusPaid,
			"pending_key":    nil,
			"payment_method": paymentMethod,
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

func (r *orderRepoImpl) MarkCancelled(ctx context.Context, tx *gorm.DB, orderID uint) error {
	return tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":      model.OrderStatusCancelled,
			"pending_key": nil,
			"updated_at":  time.Now(),
		}).Error
}

func (r *orderRepoImpl) Delete(ctx context.Context, tx *gorm.DB, orderID uint) error {
	err := tx.WithContext(ctx).Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error
	if err != nil {
		return err
	}

	return tx.WithContext(ctx).Where("id = ?", orderID).Delete(&model.Order{}).Error
}

// UpsertItem inserts a line or, when the product is already in the order,
// adds the quantity to the existing line and keeps its captured unit price.
func (r *orderRepoImpl) UpsertItem(ctx context.Context, tx *gorm.DB, item *model.OrderItem) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("order_items.quantity + ?", item.Quantity),
			"updated_at": time.Now(),
		}),
	}).Create(item).Error
}

func (r *orderRepoImpl) FindItem(ctx context.Context, tx *gorm.DB, itemID uint) (*model.OrderItem, error) {
	var item model.OrderItem
	err := tx.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *orderRepoImpl) UpdateItemQuantity(ctx context.Context, tx *gorm.DB, itemID uint, quantity int64) error {
	return tx.WithContext(ctx).Model(&model.OrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		}).Error
}

func (r *orderRepoImpl) DeleteItem(ctx context.Context, tx *gorm.DB, itemID uint) error {
	return tx.WithContext(ctx).Where("id = ?", itemID).Delete(&model.OrderItem{}).Error
}

func (r *orderRepoImpl) GetOrderItems(ctx context.Context, tx *gorm.DB, orderID uint) ([]*model.OrderItem, error) {
	var items []*model.OrderItem
	err := tx.WithContext(ctx).Where("order_id = ?", orderID).
		Order("id").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}
