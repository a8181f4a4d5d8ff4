package dto

import (
	"mediastore-checkout/internal/model"
	"time"
)

type AddItemRequest struct {
	ProductID uint  `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"omitempty,min=1,max=1000"` // defaults to 1
}

type UpdateItemRequest struct {
	Quantity *int64 `json:"quantity" validate:"required,min=0,max=1000"` // 0 removes the item
}

type CheckoutRequest struct {
	OrderID  uint   `json:"order_id" validate:"required,gt=0"`
	Provider string `json:"provider" validate:"omitempty,max=64"`
}

type ConfirmOTPRequest struct {
	OTP string `json:"otp" validate:"required,max=16"`
}

type CartResponse struct {
	Cart *model.Order `json:"cart"`
}

type UpdateItemResponse struct {
	Item  *model.OrderItem `json:"item"`
	Order *model.Order     `json:"order"`
}

type Challenge struct {
	Reference string    `json:"reference"`
	QRPayload string    `json:"qr_payload"`
	ExpiresAt time.Time `json:"expires_at"`
	// DevCode carries the plain code outside production so the simulated
	// flow can be completed without a delivery channel.
	DevCode string `json:"dev_code,omitempty"`
}

type CheckoutResponse struct {
	PaymentID     uint      `json:"payment_id"`
	OrderID       uint      `json:"order_id"`
	Amount        int64     `json:"amount"`
	AmountDisplay string    `json:"amount_display"`
	Currency      string    `json:"currency"`
	Provider      string    `json:"provider"`
	Challenge     Challenge `json:"challenge"`
}

const (
	ConfirmStatusSuccess = "success"
	ConfirmStatusFailed  = "failed"
)

type ConfirmResponse struct {
	PaymentID         uint                `json:"payment_id"`
	OrderID           uint                `json:"order_id"`
	Status            string              `json:"status"` // success, failed
	PaymentStatus     model.PaymentStatus `json:"payment_status"`
	Reason            string              `json:"reason,omitempty"`
	AttemptsRemaining *int                `json:"attempts_remaining,omitempty"`
}

type AccessResponse struct {
	ProductID uint `json:"product_id"`
	CanAccess bool `json:"can_access"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
