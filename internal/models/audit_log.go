package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog - İşlem geçmişi kaydı
type AuditLog struct {
	ID          uint        `gorm:"primaryKey"`
	BranchID    *uint       `gorm:"index"`
	UserID      uint        `gorm:"index;not null"`
	UserName    string      `gorm:"size:100;not null"`
	EntityType  string      `gorm:"size:50;index;not null"` // order, inventory_adjustment, due_payment vs.
	EntityID    uint        `gorm:"index;not null"`
	Action      AuditAction `gorm:"size:20;not null"`
	Description string      `gorm:"size:500"`
	BeforeData  string      `gorm:"type:text"` // JSON
	AfterData   string      `gorm:"type:text"` // JSON
	CreatedAt   time.Time   `gorm:"index"`
}
