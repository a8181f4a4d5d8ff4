package repository

import (
	"context"
	"testing"
	"time"

	"mediastore-checkout/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPayment(t *testing.T, db *gorm.DB, userID, ref string) *model.Payment {
	t.Helper()
	payment := &model.Payment{
		OrderID:   1,
		UserID:    userID,
		Provider:  "qr-otp",
		Amount:    6000,
		Currency:  "USD",
		Status:    model.PaymentStatusInitiated,
		Reference: ref,
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, NewPaymentRepository(db).Create(context.Background(), db, payment))
	return payment
}

func TestMarkSucceeded_StoresSnapshotOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()
	payment := newPayment(t, db, "u1", "PAY-1")

	snapshot := &model.OrderSnapshot{
		OrderID:     1,
		Title:       "The Pragmatic Gopher + 1 more",
		TotalAmount: 6000,
		Currency:    "USD",
		Items: []model.SnapshotItem{
			{ProductID: 7, Title: "The Pragmatic Gopher", Quantity: 1, UnitPrice: 1000, Subtotal: 1000},
			{ProductID: 9, Title: "Concurrency Patterns, Season 1", Quantity: 2, UnitPrice: 2500, Subtotal: 5000},
		},
	}
	require.NoError(t, repo.MarkSucceeded(ctx, db, payment.ID, snapshot))
	assert.ErrorIs(t, repo.MarkSucceeded(ctx, db, payment.ID, snapshot), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.MarkFailed(ctx, db, payment.ID, model.FailureExpired), gorm.ErrRecordNotFound)

	stored, err := repo.FindByID(ctx, db, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusSuccess, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
	require.NotNil(t, stored.Snapshot)
	assert.Equal(t, snapshot.Items, stored.Snapshot.Items)
	assert.Equal(t, snapshot.Title, stored.Snapshot.Title)
}

func TestIncrementAttemptsAndFail(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()
	payment := newPayment(t, db, "u1", "PAY-1")

	require.NoError(t, repo.IncrementAttempts(ctx, db, payment.ID))
	require.NoError(t, repo.IncrementAttempts(ctx, db, payment.ID))
	require.NoError(t, repo.MarkFailed(ctx, db, payment.ID, model.FailureTooManyAttempts))

	stored, err := repo.FindByIDForUpdate(ctx, db, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.OTPAttempts)
	assert.Equal(t, model.PaymentStatusFailed, stored.Status)
	assert.Equal(t, model.FailureTooManyAttempts, stored.FailureReason)
	assert.Nil(t, stored.Snapshot)
}

func TestPaymentReference_Unique(t *testing.T) {
	db := newTestDB(t)
	newPayment(t, db, "u1", "PAY-1")

	dup := &model.Payment{OrderID: 1, UserID: "u1", Provider: "x", Currency: "USD", Status: model.PaymentStatusInitiated, Reference: "PAY-1"}
	assert.Error(t, NewPaymentRepository(db).Create(context.Background(), db, dup))
}

func TestListByUser_CountByOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	newPayment(t, db, "u1", "PAY-1")
	newPayment(t, db, "u1", "PAY-2")
	newPayment(t, db, "u2", "PAY-3")

	payments, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "PAY-2", payments[0].Reference)

	count, err := repo.CountByOrder(ctx, db, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
