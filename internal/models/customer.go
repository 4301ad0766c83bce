package models

import "time"

// Customer - Müşteri. Veresiye bakiyesi, siparişlerindeki due_amount toplamıdır;
// ayrı bir bakiye kolonu tutulmaz.
type Customer struct {
	ID        uint    `gorm:"primaryKey"`
	BranchID  *uint   `gorm:"index"`
	Branch    *Branch `gorm:"foreignKey:BranchID"`
	Name      string  `gorm:"size:100;not null"`
	Phone     string  `gorm:"size:30;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
