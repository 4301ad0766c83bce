package models

import "time"

// UserRole - super_admin tüm şubeleri yönetir, branch_admin yalnızca kendi
// şubesinde işlem yapabilir.
type UserRole string

const (
	RoleSuperAdmin  UserRole = "super_admin"
	RoleBranchAdmin UserRole = "branch_admin"
)

// User - Sistem kullanıcısı. PasswordHash bcrypt çıktısıdır, düz şifre hiçbir
// yerde tutulmaz. BranchID super_admin için boştur.
type User struct {
	ID           uint  `gorm:"primaryKey"`
	BranchID     *uint `gorm:"index"`
	Branch       *Branch
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;index;not null"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
