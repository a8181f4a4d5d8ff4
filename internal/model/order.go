package model

import "time"

type ProductType string

const (
	ProductTypeEbook   ProductType = "EBOOK"
	ProductTypePodcast ProductType = "PODCAST"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "initiated"
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// payment failure reasons
const (
	FailureExpired         = "expired"
	FailureTooManyAttempts = "too_many_attempts"
	FailureOrderChanged    = "order_changed"
)

type SnapshotItem struct {
	ProductID uint   `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

// OrderSnapshot is the order content frozen into a payment at success time.
type OrderSnapshot struct {
	OrderID     uint           `json:"order_id"`
	Title       string         `json:"title"`
	Items       []SnapshotItem `json:"items"`
	TotalAmount int64          `json:"total_amount"`
	Currency    string         `json:"currency"`
	CapturedAt  time.Time      `json:"captured_at"`
}
