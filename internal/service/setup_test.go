package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mediastore-checkout/internal/client"
	"mediastore-checkout/internal/model"
	"mediastore-checkout/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	alice      = "user-alice"
	bob        = "user-bob"
	sharedCode = "123456"

	ebookID   uint = 7 // 1000
	podcastID uint = 9 // 2500
)

type testEnv struct {
	db              *gorm.DB
	orderRepo       repository.OrderRepository
	paymentRepo     repository.PaymentRepository
	entitlementRepo repository.EntitlementRepository
	entitlements    EntitlementService
	cart            CartService
	checkout        *checkoutServiceImpl
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, 1)
}

// openTestDB with more than one connection switches sqlite to WAL and
// BEGIN IMMEDIATE so concurrent transactions wait on the file lock instead
// of failing with SQLITE_BUSY.
func openTestDB(t *testing.T, maxConns int) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	if maxConns > 1 {
		dsn += "?_journal_mode=WAL&_busy_timeout=10000&_txlock=immediate"
	}

	db, err := client.OpenDatabase("sqlite", dsn)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(maxConns)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, client.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvOn(t, newTestDB(t))
}

func newTestEnvOn(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()

	productRepo := repository.NewProductRepository(db)
	require.NoError(t, productRepo.Seed(context.Background()))

	env := &testEnv{
		db:              db,
		orderRepo:       repository.NewOrderRepository(db),
		paymentRepo:     repository.NewPaymentRepository(db),
		entitlementRepo: repository.NewEntitlementRepository(db),
	}
	env.entitlements = NewEntitlementService(env.entitlementRepo)
	env.cart = NewCartService(db, productRepo, env.orderRepo, env.paymentRepo)
	env.checkout = env.newCheckout(t, env.entitlements, nil)

	return env
}

func (e *testEnv) newCheckout(t *testing.T, entitlements EntitlementService, otp OTPIssuer) *checkoutServiceImpl {
	t.Helper()

	if otp == nil {
		var err error
		otp, err = NewOTPIssuer(OTPModeShared, sharedCode)
		require.NoError(t, err)
	}

	svc := NewCheckoutService(e.db, e.orderRepo, e.paymentRepo, entitlements, otp, nil, CheckoutOptions{
		Currency:        "USD",
		DefaultProvider: "qr-otp",
		BaseURL:         "http://shop.test/",
		OTPTTL:          10 * time.Minute,
		MaxAttempts:     3,
		ExposeCode:      true,
	})
	return svc.(*checkoutServiceImpl)
}

func (e *testEnv) payment(t *testing.T, id uint) *model.Payment {
	t.Helper()
	p, err := e.paymentRepo.FindByID(context.Background(), e.db, id)
	require.NoError(t, err)
	return p
}

func (e *testEnv) order(t *testing.T, id uint) *model.Order {
	t.Helper()
	o, err := e.orderRepo.FindByID(context.Background(), e.db, id)
	require.NoError(t, err)
	return o
}

func sumItems(order *model.Order) int64 {
	var sum int64
	for _, item := range order.Items {
		sum += item.UnitPrice * item.Quantity
	}
	return sum
}
