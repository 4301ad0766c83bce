package models

import "time"

// ProductCategory - Ürün kategorisi
type ProductCategory struct {
	ID        uint   `gorm:"primaryKey"`
	BranchID  uint   `gorm:"index;not null"`
	Branch    Branch `gorm:"foreignKey:BranchID"`
	Name      string `gorm:"size:100;not null;uniqueIndex:idx_category_branch_name"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product - Ürün. Quantity eldeki stok miktarıdır; yalnızca Stock Ledger yazar
// ve hiçbir zaman negatif kalıcılaştırılmaz.
type Product struct {
	ID         uint             `gorm:"primaryKey"`
	BranchID   uint             `gorm:"index;not null;uniqueIndex:idx_product_branch_name"`
	Branch     Branch           `gorm:"foreignKey:BranchID"`
	CategoryID *uint            `gorm:"index"`
	Category   *ProductCategory `gorm:"foreignKey:CategoryID"`
	Name       string           `gorm:"size:100;not null;uniqueIndex:idx_product_branch_name"`
	Price      float64          `gorm:"not null"`
	Quantity   float64          `gorm:"not null;default:0"` // Eldeki stok
	Unit       string           `gorm:"size:20;not null"`   // adet, kg, porsiyon vs.
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
