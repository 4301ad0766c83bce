package models

import "time"

// TableStatus - Masa durumu
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
)

// Table - Restoran masası. GORM'un varsayılan "tables" adı Postgres'te sorun
// çıkardığı için tablo adı "dining_tables".
type Table struct {
	ID        uint        `gorm:"primaryKey"`
	BranchID  uint        `gorm:"index;not null"`
	Branch    Branch      `gorm:"foreignKey:BranchID"`
	Name      string      `gorm:"size:50;not null"`
	Status    TableStatus `gorm:"type:varchar(20);not null;default:available"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Table) TableName() string {
	return "dining_tables"
}
