package service

import (
	"context"
	"fmt"
	"mediastore-checkout/internal/model"
	"mediastore-checkout/internal/repository"

	"gorm.io/gorm"
)

type EntitlementService interface {
	// Grant runs inside the caller's transaction and is safe to repeat.
	Grant(ctx context.Context, tx *gorm.DB, userID string, orderID uint, productIDs []uint) error
	CanAccess(ctx context.Context, userID string, productID uint) (bool, error)
	List(ctx context.Context, userID string) ([]*model.Entitlement, error)
}

type entitlementServiceImpl struct {
	entitlementRepo repository.EntitlementRepository
}

func NewEntitlementService(
	entitlementRepo repository.EntitlementRepository,
) EntitlementService {
	return &entitlementServiceImpl{
		entitlementRepo: entitlementRepo,
	}
}

func (s *entitlementServiceImpl) Grant(ctx context.Context, tx *gorm.DB, userID string, orderID uint, productIDs []uint) error {
	seen := make(map[uint]struct{}, len(productIDs))
	for _, productID := range productIDs {
		if _, ok := seen[productID]; ok {
			continue
		}
		seen[productID] = struct{}{}

		err := s.entitlementRepo.Insert(ctx, tx, &model.Entitlement{
			UserID:    userID,
			ProductID: productID,
			OrderID:   orderID,
		})
		if err != nil {
			return fmt.Errorf("grant product %d: %w", productID, err)
		}
	}

	return nil
}

func (s *entitlementServiceImpl) CanAccess(ctx context.Context, userID string, productID uint) (bool, error) {
	return s.entitlementRepo.Exists(ctx, userID, productID)
}

func (s *entitlementServiceImpl) List(ctx context.Context, userID string) ([]*model.Entitlement, error) {
	return s.entitlementRepo.ListByUser(ctx, userID)
}
