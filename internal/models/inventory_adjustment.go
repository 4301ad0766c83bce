package models

import "time"

type AdjustmentType string

const (
	AdjustmentAdd    AdjustmentType = "add"
	AdjustmentRemove AdjustmentType = "remove"
	AdjustmentSet    AdjustmentType = "set"
	AdjustmentSale   AdjustmentType = "sale" // Sipariş kesinleşmesinden gelen düşüm
)

// InventoryAdjustment - Stok hareket kaydı. Append-only: yazıldıktan sonra
// güncellenmez ve silinmez; Product.Quantity'deki her değişikliğin izi buradadır.
type InventoryAdjustment struct {
	ID             uint           `gorm:"primaryKey"`
	BranchID       uint           `gorm:"index;not null"`
	ProductID      uint           `gorm:"index;not null"`
	Product        Product        `gorm:"foreignKey:ProductID"`
	AdjustmentType AdjustmentType `gorm:"size:20;not null"`
	Quantity       float64        `gorm:"not null"` // add/remove/sale: delta, set: mutlak miktar
	Reason         string         `gorm:"size:255"`
	Notes          string         `gorm:"size:500"`
	CreatedAt      time.Time      `gorm:"index"`
}
