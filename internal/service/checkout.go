package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mediastore-checkout/internal/dto"
	"mediastore-checkout/internal/limiter"
	"mediastore-checkout/internal/model"
	"mediastore-checkout/internal/repository"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userID string, orderID uint, provider string) (*dto.CheckoutResponse, error)
	ConfirmOTP(ctx context.Context, userID string, paymentID uint, code string) (*dto.ConfirmResponse, error)
	History(ctx context.Context, userID string) ([]*model.Payment, error)
}

type CheckoutOptions struct {
	Currency        string
	DefaultProvider string
	BaseURL         string
	OTPTTL          time.Duration
	MaxAttempts     int
	// ExposeCode returns the plain one-time code in the challenge.
	ExposeCode bool
}

type checkoutServiceImpl struct {
	db                 *gorm.DB
	orderRepo          repository.OrderRepository
	paymentRepo        repository.PaymentRepository
	entitlementService EntitlementService
	otp                OTPIssuer
	limiter            limiter.AttemptLimiter
	opts               CheckoutOptions
	now                func() time.Time
}

func NewCheckoutService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	entitlementService EntitlementService,
	otp OTPIssuer,
	attemptLimiter limiter.AttemptLimiter,
	opts CheckoutOptions,
) CheckoutService {
	if attemptLimiter == nil {
		attemptLimiter = limiter.Noop{}
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}

	return &checkoutServiceImpl{
		db:                 db,
		orderRepo:          orderRepo,
		paymentRepo:        paymentRepo,
		entitlementService: entitlementService,
		otp:                otp,
		limiter:            attemptLimiter,
		opts:               opts,
		now:                time.Now,
	}
}

func (s *checkoutServiceImpl) Checkout(ctx context.Context, userID string, orderID uint, provider string) (*dto.CheckoutResponse, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = s.opts.DefaultProvider
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("find order: %w", err)
	}

	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %d", ErrForbidden, orderID)
	}
	if order.Status != model.OrderStatusPending {
		return nil, fmt.Errorf("%w: order %d is %s", ErrInvalidState, orderID, order.Status)
	}
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("%w: order %d has no items", ErrInvalidState, orderID)
	}

	code, hash, err := s.otp.Issue()
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		OrderID:   order.ID,
		UserID:    userID,
		Provider:  provider,
		Amount:    order.TotalAmount,
		Currency:  s.opts.Currency,
		Status:    model.PaymentStatusInitiated,
		Reference: "PAY-" + strings.ToUpper(uuid.NewString()),
		OTPHash:   hash,
		ExpiresAt: s.now().Add(s.opts.OTPTTL),
	}
	if err := s.paymentRepo.Create(ctx, s.db, payment); err != nil {
		return nil, fmt.Errorf("store payment: %w", err)
	}

	log.Printf("checkout: payment %d initiated for order %d, amount=%d %s provider=%s",
		payment.ID, order.ID, payment.Amount, payment.Currency, provider)

	challenge := dto.Challenge{
		Reference: payment.Reference,
		QRPayload: s.qrPayload(payment),
		ExpiresAt: payment.ExpiresAt,
	}
	if s.opts.ExposeCode {
		challenge.DevCode = code
	}

	return &dto.CheckoutResponse{
		PaymentID:     payment.ID,
		OrderID:       order.ID,
		Amount:        payment.Amount,
		AmountDisplay: FormatAmount(payment.Amount, payment.Currency),
		Currency:      payment.Currency,
		Provider:      provider,
		Challenge:     challenge,
	}, nil
}

// qrPayload is what a client renders as the QR code. It identifies the
// challenge only; confirmation always needs the one-time code.
func (s *checkoutServiceImpl) qrPayload(payment *model.Payment) string {
	q := url.Values{}
	q.Set("amount", decimal.New(payment.Amount, -2).StringFixed(2))
	q.Set("currency", payment.Currency)

	return fmt.Sprintf("%s/pay/%s?%s", strings.TrimRight(s.opts.BaseURL, "/"), payment.Reference, q.Encode())
}

func (s *checkoutServiceImpl) History(ctx context.Context, userID string) ([]*model.Payment, error) {
	payments, err := s.paymentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	return payments, nil
}
