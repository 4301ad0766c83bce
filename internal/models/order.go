package models

import "time"

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type DiscountType string

const (
	DiscountAmount     DiscountType = "amount"
	DiscountPercentage DiscountType = "percentage"
)

type DiningOption string

const (
	DiningDineIn   DiningOption = "dine_in"
	DiningTakeout  DiningOption = "takeout"
	DiningDelivery DiningOption = "delivery"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusDue    PaymentStatus = "due" // Eksik ödeme, kalan veresiyede
)

// Order - Sipariş agregatının kökü. Parasal alanlar 2 ondalık haneye
// yuvarlanmış tutulur. DueAmount > 0 ise sipariş müşterinin veresiye
// bakiyesine katkı verir ve yalnızca Due Ledger tarafından düşülür.
type Order struct {
	ID            uint          `gorm:"primaryKey"`
	OrderNumber   string        `gorm:"size:30;uniqueIndex;not null"` // SP-YYYYMMDD-NNNN
	BranchID      uint          `gorm:"index;not null"`
	Branch        Branch        `gorm:"foreignKey:BranchID"`
	TableID       *uint         `gorm:"index"`
	Table         *Table        `gorm:"foreignKey:TableID"`
	CustomerID    *uint         `gorm:"index"`
	Customer      *Customer     `gorm:"foreignKey:CustomerID"`
	DiningOption  DiningOption  `gorm:"size:20;not null;default:dine_in"`
	Status        OrderStatus   `gorm:"size:20;index;not null;default:pending"`
	Subtotal      float64       `gorm:"not null"`
	Discount      float64       `gorm:"not null;default:0"`
	DiscountType  DiscountType  `gorm:"size:20;not null;default:amount"`
	Total         float64       `gorm:"not null"`
	PaidAmount    float64       `gorm:"not null;default:0"`
	DueAmount     float64       `gorm:"not null;default:0"`
	ChangeAmount  float64       `gorm:"not null;default:0"`
	PaymentMethod string        `gorm:"size:30"` // cash, card, split vs.
	PaymentStatus PaymentStatus `gorm:"size:20;not null;default:unpaid"`
	PaymentSplits string        `gorm:"type:text"` // Şema doğrulanmış JSON parça listesi
	Items         []OrderItem   `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time     `gorm:"index"`
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

// OrderCounter - Gün başına sipariş numarası sayacı. Numara üretimi bu satıra
// bağlıdır, created_at'e değil; geçmişe tarihlenen siparişler sırayı bozmaz.
type OrderCounter struct {
	Day     string `gorm:"primaryKey;size:8"` // YYYYMMDD
	Counter int64  `gorm:"not null"`
}

// OrderItem - Sipariş kalemi. Price sipariş anındaki birim fiyat anlık
// görüntüsüdür; ürün fiyatı sonradan değişse de kalem etkilenmez.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"`
	OrderID   uint    `gorm:"index;not null"`
	ProductID uint    `gorm:"index;not null"`
	Product   Product `gorm:"foreignKey:ProductID"`
	Quantity  float64 `gorm:"not null"`
	Price     float64 `gorm:"not null"` // Sipariş anı birim fiyatı
	Total     float64 `gorm:"not null"` // Price * Quantity, yuvarlanmış
	CreatedAt time.Time
	UpdatedAt time.Time
}
