package model

import "time"

type Product struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Title     string      `gorm:"size:255;not null" json:"title"`
	Type      ProductType `gorm:"size:16;index;not null" json:"type"` // EBOOK, PODCAST
	Price     int64       `gorm:"not null" json:"price"`              // cents
	Currency  string      `gorm:"size:8;not null" json:"currency"`
	CreatedAt time.Time   `json:"created_at"`
}

type Order struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"size:64;index;not null" json:"user_id"`
	// PendingKey holds the owner id while the order is the user's cart and is
	// NULL afterwards, so the unique index allows one pending order per user.
	PendingKey    *string     `gorm:"size:64;uniqueIndex" json:"-"`
	Status        OrderStatus `gorm:"size:16;index;not null" json:"status"` // pending, paid, cancelled, refunded
	TotalAmount   int64       `gorm:"not null" json:"total_amount"`         // sum of items, cents
	PaymentMethod string      `gorm:"size:64" json:"payment_method,omitempty"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// FK → orders.id
	OrderID uint `gorm:"uniqueIndex:idx_order_product;not null" json:"order_id"`
	// FK → products.id
	ProductID uint      `gorm:"uniqueIndex:idx_order_product;not null" json:"product_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"` // price when added
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Payment struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	OrderID          uint           `gorm:"index;not null" json:"order_id"`
	UserID           string         `gorm:"size:64;index;not null" json:"user_id"`
	Provider         string         `gorm:"size:64;not null" json:"provider"`
	Amount           int64          `gorm:"not null" json:"amount"`
	Currency         string         `gorm:"size:8;not null" json:"currency"`
	Status           PaymentStatus  `gorm:"size:16;index;not null" json:"status"` // initiated, success, failed
	Reference        string         `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	ProviderRef      string         `gorm:"size:128" json:"provider_ref,omitempty"`
	ProviderResponse string         `gorm:"type:text" json:"provider_response,omitempty"`
	OTPHash          string         `gorm:"size:128" json:"-"`
	OTPAttempts      int            `gorm:"not null;default:0" json:"otp_attempts"`
	ExpiresAt        time.Time      `json:"expires_at"`
	FailureReason    string         `gorm:"size:32" json:"failure_reason,omitempty"`
	Snapshot         *OrderSnapshot `gorm:"serializer:json;type:text" json:"snapshot,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type Entitlement struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	ProductID uint      `gorm:"primaryKey;index" json:"product_id"`
	OrderID   uint      `gorm:"not null" json:"order_id"` // order of the first grant
	CreatedAt time.Time `json:"created_at"`
}
