package service

import (
	"context"
	"sync"
	"testing"

	"mediastore-checkout/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem_TotalsFollowItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.cart.AddItem(ctx, alice, ebookID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, int64(1000), order.TotalAmount)

	order, err = env.cart.AddItem(ctx, alice, podcastID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), order.TotalAmount)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "The Pragmatic Gopher", order.Items[0].Title)
}

func TestAddItem_ExistingProductIncrementsQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.cart.AddItem(ctx, alice, ebookID, 1)
	require.NoError(t, err)
	order, err := env.cart.AddItem(ctx, alice, ebookID, 2)
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(3), order.Items[0].Quantity)
	assert.Equal(t, int64(3000), order.TotalAmount)
}

func TestAddItem_KeepsPriceCapturedAtFirstAdd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.cart.AddItem(ctx, alice, ebookID, 1)
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&model.Product{}).Where("id = ?", ebookID).Update("price", 5000).Error)

	order, err := env.cart.AddItem(ctx, alice, ebookID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), order.Items[0].UnitPrice)
	assert.Equal(t, int64(2000), order.TotalAmount)

	// a new line picks up the current price
	order, err = env.cart.AddItem(ctx, bob, ebookID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), order.TotalAmount)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.cart.AddItem(context.Background(), alice, 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	cart, err := env.cart.GetCart(context.Background(), alice)
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.cart.AddItem(context.Background(), alice, ebookID, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddItem_QuantityCap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, qty := range []int64{MaxItemQuantity + 1, 9223372036854776} {
		_, err := env.cart.AddItem(ctx, alice, ebookID, qty)
		assert.ErrorIs(t, err, ErrValidation, "quantity %d", qty)
	}
	cart, err := env.cart.GetCart(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, cart)

	order, err := env.cart.AddItem(ctx, alice, ebookID, 600)
	require.NoError(t, err)
	require.Equal(t, int64(600*1000), order.TotalAmount)

	// the increment would push the line past the cap
	_, err = env.cart.AddItem(ctx, alice, ebookID, 600)
	assert.ErrorIs(t, err, ErrValidation)

	order = env.order(t, order.ID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(600), order.Items[0].Quantity)
	assert.Equal(t, int64(600*1000), order.TotalAmount)

	order, err = env.cart.AddItem(ctx, alice, ebookID, MaxItemQuantity-600)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxItemQuantity), order.Items[0].Quantity)
}

func TestUpdateItemQuantity_Cap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.cart.AddItem(ctx, alice, podcastID, 1)
	require.NoError(t, err)

	_, _, err = env.cart.UpdateItemQuantity(ctx, alice, order.Items[0].ID, MaxItemQuantity+1)
	assert.ErrorIs(t, err, ErrValidation)

	item, order, err := env.cart.UpdateItemQuantity(ctx, alice, order.Items[0].ID, MaxItemQuantity)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxItemQuantity), item.Quantity)
	assert.Equal(t, int64(MaxItemQuantity*2500), order.TotalAmount)
}

func TestAddItem_ConcurrentCallsShareOneCart(t *testing.T) {
	env := newTestEnvOn(t, openTestDB(t, 8))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			productID := ebookID
			if i%2 == 1 {
				productID = podcastID
			}
			_, err := env.cart.AddItem(ctx, alice, productID, 1)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var pending int64
	require.NoError(t, env.db.Model(&model.Order{}).
		Where("user_id = ? AND status = ?", alice, model.OrderStatusPending).
		Count(&pending).Error)
	assert.Equal(t, int64(1), pending)

	cart, err := env.cart.GetCart(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(10*1000+10*2500), cart.TotalAmount)
}

func TestCart_TotalInvariantAcrossMutations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	check := func(order *model.Order) {
		t.Helper()
		if order == nil {
			return
		}
		assert.Equal(t, sumItems(order), order.TotalAmount)
	}

	order, err := env.cart.AddItem(ctx, alice, ebookID, 2)
	require.NoError(t, err)
	check(order)

	order, err = env.cart.AddItem(ctx, alice, podcastID, 1)
	require.NoError(t, err)
	check(order)

	order, err = env.cart.AddItem(ctx, alice, 12, 3)
	require.NoError(t, err)
	check(order)

	_, order, err = env.cart.UpdateItemQuantity(ctx, alice, order.Items[1].ID, 4)
	require.NoError(t, err)
	check(order)
	assert.Equal(t, int64(2*1000+4*2500+3*1999), order.TotalAmount)

	order, err = env.cart.RemoveItem(ctx, alice, order.Items[0].ID)
	require.NoError(t, err)
	check(order)

	_, order, err = env.cart.UpdateItemQuantity(ctx, alice, order.Items[0].ID, 0)
	require.NoError(t, err)
	check(order)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(3*1999), order.TotalAmount)
}

func TestUpdateItemQuantity_ReturnsItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.cart.AddItem(ctx, alice, podcastID, 1)
	require.NoError(t, err)

	item, order, err := env.cart.UpdateItemQuantity(ctx, alice, order.Items[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.Quantity)
	assert.Equal(t, int64(12500), order.TotalAmount)
}

func TestUpdateItemQuantity_ZeroRemovesLastItemAndCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.cart.AddItem(ctx, alice, ebookID, 1)
	require.NoError(t, err)

	item, after, err := env.cart.UpdateItemQuantity(ctx, alice, order.Items[0].ID, 0)
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.Nil(t, after)

	cart, err := env.cart.GetCart(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, cart)

	var count int64
	require.NoError(t, env.db.Model(&model.Order{}).Where("id = ?", order.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateItemQuantity_Negative(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.cart.AddItem(ctx, alice, ebookID, 1)
	require.NoError(t, err)

	_, _, err = env.cart.UpdateItemQuantity(ctx, alice, order.Items[0].ID, -1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCartItems_OtherUserSeesNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.cart.AddItem(ctx, alice, ebookID, 1)
	require.NoError(t, err)
	itemID := order.Items[0].ID

	_, _, err = env.cart.UpdateItemQuantity(ctx, bob, itemID, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.cart.RemoveItem(ctx, bob, itemID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.cart.RemoveItem(ctx, alice, 424242)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, int64(1000), env.order(t, order.ID).TotalAmount)
}

func TestCartItems_PaidOrderIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.cart.AddItem(ctx, alice, ebookID, 1)
	require.NoError(t, err)
	res, err := env.checkout.Checkout(ctx, alice, order.ID, "")
	require.NoError(t, err)
	_, err = env.checkout.ConfirmOTP(ctx, alice, res.PaymentID, sharedCode)
	require.NoError(t, err)

	_, _, err = env.cart.UpdateItemQuantity(ctx, alice, order.Items[0].ID, 3)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = env.cart.RemoveItem(ctx, alice, order.Items[0].ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	cart, err := env.cart.GetCart(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestRemoveItem_EmptyOrderWithPaymentsIsCancelled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.cart.AddItem(ctx, alice, ebookID, 1)
	require.NoError(t, err)
	res, err := env.checkout.Checkout(ctx, alice, order.ID, "")
	require.NoError(t, err)

	after, err := env.cart.RemoveItem(ctx, alice, order.Items[0].ID)
	require.NoError(t, err)
	assert.Nil(t, after)

	kept := env.order(t, order.ID)
	assert.Equal(t, model.OrderStatusCancelled, kept.Status)
	assert.Nil(t, kept.PendingKey)

	// the stale challenge can no longer settle the order
	confirm, err := env.checkout.ConfirmOTP(ctx, alice, res.PaymentID, sharedCode)
	require.NoError(t, err)
	assert.Equal(t, "failed", confirm.Status)
	assert.Equal(t, model.FailureOrderChanged, confirm.Reason)

	// and a fresh cart can be started
	next, err := env.cart.AddItem(ctx, alice, podcastID, 1)
	require.NoError(t, err)
	assert.NotEqual(t, order.ID, next.ID)
}

func TestGetCart_NoPendingOrder(t *testing.T) {
	env := newTestEnv(t)

	cart, err := env.cart.GetCart(context.Background(), alice)
	require.NoError(t, err)
	assert.Nil(t, cart)
}
