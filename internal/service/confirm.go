package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mediastore-checkout/internal/dto"
	"mediastore-checkout/internal/model"
	"strings"
	"time"

	"gorm.io/gorm"
)

const failureInvalidOTP = "invalid_otp"

// ConfirmOTP drives a payment out of initiated. A wrong code keeps the
// payment initiated until the attempt budget is spent; a right code settles
// payment, order and entitlements in one transaction.
func (s *checkoutServiceImpl) ConfirmOTP(ctx context.Context, userID string, paymentID uint, code string) (*dto.ConfirmResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: otp is required", ErrValidation)
	}

	allowed, err := s.limiter.Allow(ctx, fmt.Sprintf("%s:%d", userID, paymentID))
	if err != nil {
		// attempts are still bounded per payment in the database
		log.Printf("confirm: attempt limiter unavailable: %v", err)
	} else if !allowed {
		return nil, fmt.Errorf("%w: payment %d", ErrTooManyAttempts, paymentID)
	}

	var resp *dto.ConfirmResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.FindByIDForUpdate(ctx, tx, paymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment %d", ErrNotFound, paymentID)
			}
			return fmt.Errorf("find payment: %w", err)
		}

		if payment.UserID != userID {
			return fmt.Errorf("%w: payment %d", ErrForbidden, paymentID)
		}
		if payment.Status != model.PaymentStatusInitiated {
			return fmt.Errorf("%w: payment %d is %s", ErrAlreadyProcessed, paymentID, payment.Status)
		}

		if s.now().After(payment.ExpiresAt) {
			if err := s.paymentRepo.MarkFailed(ctx, tx, payment.ID, model.FailureExpired); err != nil {
				return fmt.Errorf("mark payment failed: %w", err)
			}
			resp = failedResponse(payment, model.PaymentStatusFailed, model.FailureExpired, 0)
			return nil
		}

		if !s.otp.Verify(payment.OTPHash, code) {
			resp, err = s.rejectCode(ctx, tx, payment)
			return err
		}

		resp, err = s.complete(ctx, tx, payment)
		return err
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		log.Printf("confirm: payment %d rolled back: %v", paymentID, err)
		return nil, fmt.Errorf("%w (payment %d)", ErrConfirmationFailed, paymentID)
	}

	log.Printf("confirm: payment %d -> %s (%s)", resp.PaymentID, resp.PaymentStatus, resp.Status)
	return resp, nil
}

func (s *checkoutServiceImpl) rejectCode(ctx context.Context, tx *gorm.DB, payment *model.Payment) (*dto.ConfirmResponse, error) {
	if err := s.paymentRepo.IncrementAttempts(ctx, tx, payment.ID); err != nil {
		return nil, fmt.Errorf("count otp attempt: %w", err)
	}

	remaining := s.opts.MaxAttempts - (payment.OTPAttempts + 1)
	if remaining > 0 {
		return failedResponse(payment, model.PaymentStatusInitiated, failureInvalidOTP, remaining), nil
	}

	if err := s.paymentRepo.MarkFailed(ctx, tx, payment.ID, model.FailureTooManyAttempts); err != nil {
		return nil, fmt.Errorf("mark payment failed: %w", err)
	}

	return failedResponse(payment, model.PaymentStatusFailed, model.FailureTooManyAttempts, 0), nil
}

func (s *checkoutServiceImpl) complete(ctx context.Context, tx *gorm.DB, payment *model.Payment) (*dto.ConfirmResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, tx, payment.OrderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find order: %w", err)
	}

	// the cart moved on since checkout: this challenge no longer matches it
	if order == nil || order.Status != model.OrderStatusPending || order.TotalAmount != payment.Amount {
		if err := s.paymentRepo.MarkFailed(ctx, tx, payment.ID, model.FailureOrderChanged); err != nil {
			return nil, fmt.Errorf("mark payment failed: %w", err)
		}
		return failedResponse(payment, model.PaymentStatusFailed, model.FailureOrderChanged, 0), nil
	}

	snapshot := BuildSnapshot(order, payment.Currency, s.now())

	if err := s.paymentRepo.MarkSucceeded(ctx, tx, payment.ID, snapshot); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment %d", ErrAlreadyProcessed, payment.ID)
		}
		return nil, fmt.Errorf("mark payment succeeded: %w", err)
	}

	if err := s.orderRepo.MarkPaid(ctx, tx, order.ID, payment.Provider); err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	productIDs := make([]uint, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	if err := s.entitlementService.Grant(ctx, tx, payment.UserID, order.ID, productIDs); err != nil {
		return nil, fmt.Errorf("grant entitlements: %w", err)
	}

	return &dto.ConfirmResponse{
		PaymentID:     payment.ID,
		OrderID:       order.ID,
		Status:        dto.ConfirmStatusSuccess,
		PaymentStatus: model.PaymentStatusSuccess,
	}, nil
}

// BuildSnapshot freezes the order lines as they are at payment time.
func BuildSnapshot(order *model.Order, currency string, at time.Time) *model.OrderSnapshot {
	snapshot := &model.OrderSnapshot{
		OrderID:    order.ID,
		Items:      make([]model.SnapshotItem, 0, len(order.Items)),
		Currency:   currency,
		CapturedAt: at.UTC(),
	}

	for _, item := range order.Items {
		subtotal := item.UnitPrice * item.Quantity
		snapshot.Items = append(snapshot.Items, model.SnapshotItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  subtotal,
		})
		snapshot.TotalAmount += subtotal
	}

	switch len(order.Items) {
	case 0:
	case 1:
		snapshot.Title = order.Items[0].Title
	default:
		snapshot.Title = fmt.Sprintf("%s + %d more", order.Items[0].Title, len(order.Items)-1)
	}

	return snapshot
}

func failedResponse(payment *model.Payment, status model.PaymentStatus, reason string, remaining int) *dto.ConfirmResponse {
	return &dto.ConfirmResponse{
		PaymentID:         payment.ID,
		OrderID:           payment.OrderID,
		Status:            dto.ConfirmStatusFailed,
		PaymentStatus:     status,
		Reason:            reason,
		AttemptsRemaining: &remaining,
	}
}
