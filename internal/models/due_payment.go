package models

import "time"

// DuePayment - Veresiye tahsilatı. Allocation satırlarıyla birlikte tek
// transaction'da yazılır ve sonrasında değişmez.
type DuePayment struct {
	ID          uint                   `gorm:"primaryKey"`
	BranchID    uint                   `gorm:"index;not null"`
	CustomerID  uint                   `gorm:"index;not null"`
	Customer    Customer               `gorm:"foreignKey:CustomerID"`
	Amount      float64                `gorm:"not null"`
	Method      string                 `gorm:"size:30;not null"` // cash, card vs.
	Allocations []DuePaymentAllocation `gorm:"foreignKey:DuePaymentID"`
	CreatedAt   time.Time              `gorm:"index"`
}

// DuePaymentAllocation - Tahsilatın tek bir siparişe düşen payı
type DuePaymentAllocation struct {
	ID           uint    `gorm:"primaryKey"`
	DuePaymentID uint    `gorm:"index;not null"`
	OrderID      uint    `gorm:"index;not null"`
	Order        Order   `gorm:"foreignKey:OrderID"`
	Amount       float64 `gorm:"not null"`
	CreatedAt    time.Time
}
