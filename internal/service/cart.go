package service

import (
	"context"
	"errors"
	"fmt"
	"mediastore-checkout/internal/model"
	"mediastore-checkout/internal/repository"

	"gorm.io/gorm"
)

// CartService manages the user's pending order. Adding a product that is
// already in the cart increases its quantity.
type CartService interface {
	AddItem(ctx context.Context, userID string, productID uint, quantity int64) (*model.Order, error)
	UpdateItemQuantity(ctx context.Context, userID string, itemID uint, quantity int64) (*model.OrderItem, *model.Order, error)
	// RemoveItem returns nil when the removed line was the last one.
	RemoveItem(ctx context.Context, userID string, itemID uint) (*model.Order, error)
	// GetCart returns nil when the user has no pending order.
	GetCart(ctx context.Context, userID string) (*model.Order, error)
}

// MaxItemQuantity caps a single order line.
const MaxItemQuantity = 1000

type cartServiceImpl struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
}

func NewCartService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
) CartService {
	return &cartServiceImpl{
		db:          db,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
	}
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userID string, productID uint, quantity int64) (*model.Order, error) {
	if quantity < 1 || quantity > MaxItemQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, MaxItemQuantity)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	var orderID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindOrCreatePending(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("find or create pending order: %w", err)
		}
		orderID = order.ID

		err = s.orderRepo.UpsertItem(ctx, tx, &model.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Title:     product.Title,
			Quantity:  quantity,
			UnitPrice: product.Price,
		})
		if err != nil {
			return fmt.Errorf("store order item: %w", err)
		}

		_, _, err = s.recomputeTotal(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.FindByID(ctx, s.db, orderID)
}

func (s *cartServiceImpl) UpdateItemQuantity(ctx context.Context, userID string, itemID uint, quantity int64) (*model.OrderItem, *model.Order, error) {
	if quantity < 0 || quantity > MaxItemQuantity {
		return nil, nil, fmt.Errorf("%w: quantity must be between 0 and %d", ErrValidation, MaxItemQuantity)
	}
	if quantity == 0 {
		order, err := s.RemoveItem(ctx, userID, itemID)
		return nil, order, err
	}

	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, order, err := s.findOwnedPendingItem(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}
		orderID = order.ID

		if err := s.orderRepo.UpdateItemQuantity(ctx, tx, item.ID, quantity); err != nil {
			return fmt.Errorf("update item quantity: %w", err)
		}

		_, _, err = s.recomputeTotal(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	item, err := s.orderRepo.FindItem(ctx, s.db, itemID)
	if err != nil {
		return nil, nil, fmt.Errorf("reload item: %w", err)
	}
	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("reload order: %w", err)
	}

	return item, order, nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID string, itemID uint) (*model.Order, error) {
	var (
		orderID  uint
		cartGone bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, order, err := s.findOwnedPendingItem(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}
		orderID = order.ID

		if err := s.orderRepo.DeleteItem(ctx, tx, item.ID); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}

		count, _, err := s.recomputeTotal(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		cartGone = true

		// an order referenced by payment attempts is kept for the audit trail
		attempts, err := s.paymentRepo.CountByOrder(ctx, tx, order.ID)
		if err != nil {
			return fmt.Errorf("count payments: %w", err)
		}
		if attempts > 0 {
			return s.orderRepo.MarkCancelled(ctx, tx, order.ID)
		}
		return s.orderRepo.Delete(ctx, tx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	if cartGone {
		return nil, nil
	}

	return s.orderRepo.FindByID(ctx, s.db, orderID)
}

func (s *cartServiceImpl) GetCart(ctx context.Context, userID string) (*model.Order, error) {
	order, err := s.orderRepo.FindPending(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find pending order: %w", err)
	}

	return order, nil
}

// findOwnedPendingItem reports items of other users as not found.
func (s *cartServiceImpl) findOwnedPendingItem(ctx context.Context, tx *gorm.DB, userID string, itemID uint) (*model.OrderItem, *model.Order, error) {
	item, err := s.orderRepo.FindItem(ctx, tx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: order item %d", ErrNotFound, itemID)
		}
		return nil, nil, fmt.Errorf("find item: %w", err)
	}

	order, err := s.orderRepo.FindByID(ctx, tx, item.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: order item %d", ErrNotFound, itemID)
		}
		return nil, nil, fmt.Errorf("find order: %w", err)
	}

	if order.UserID != userID {
		return nil, nil, fmt.Errorf("%w: order item %d", ErrNotFound, itemID)
	}
	if order.Status != model.OrderStatusPending {
		return nil, nil, fmt.Errorf("%w: order %d is %s", ErrInvalidState, order.ID, order.Status)
	}

	return item, order, nil
}

// recomputeTotal stores the order total from its current lines and returns
// the line count with the total. Lines above MaxItemQuantity, which the
// add-to-cart increment can produce, fail with ErrValidation.
func (s *cartServiceImpl) recomputeTotal(ctx context.Context, tx *gorm.DB, orderID uint) (int, int64, error) {
	items, err := s.orderRepo.GetOrderItems(ctx, tx, orderID)
	if err != nil {
		return 0, 0, fmt.Errorf("get order items: %w", err)
	}

	for _, item := range items {
		if item.Quantity > MaxItemQuantity {
			return 0, 0, fmt.Errorf("%w: product %d would exceed %d units", ErrValidation, item.ProductID, MaxItemQuantity)
		}
	}

	total, err := OrderTotal(items)
	if err != nil {
		return 0, 0, err
	}

	if err := s.orderRepo.UpdateTotal(ctx, tx, orderID, total); err != nil {
		return 0, 0, fmt.Errorf("update order total: %w", err)
	}

	return len(items), total, nil
}
