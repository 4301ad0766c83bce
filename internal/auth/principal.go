package auth

import (
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

const ctxPrincipalKey = "principal"

// Principal - İsteği yapan kimliği taşıyan, istek kapsamlı nesne.
// Handler'lar kimlik bilgisini global durumdan değil buradan okur.
type Principal struct {
	UserID   uint
	Name     string
	Role     models.UserRole
	BranchID *uint
}

// IsSuperAdmin - super_admin tüm şubelere erişebilir
func (p Principal) IsSuperAdmin() bool {
	return p.Role == models.RoleSuperAdmin
}

// CanAccessBranch - Principal verilen şubede işlem yapabilir mi
func (p Principal) CanAccessBranch(branchID uint) bool {
	if p.IsSuperAdmin() {
		return true
	}
	return p.BranchID != nil && *p.BranchID == branchID
}

// PrincipalFromCtx - Middleware'in yerleştirdiği principal'ı döner
func PrincipalFromCtx(c *fiber.Ctx) (Principal, error) {
	p, ok := c.Locals(ctxPrincipalKey).(Principal)
	if !ok {
		return Principal{}, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}
	return p, nil
}

// ResolveBranchID - branch_admin kendi şubesini kullanır; super_admin istekle
// birlikte şube belirtmek zorundadır.
func ResolveBranchID(p Principal, requested *uint) (uint, error) {
	if p.Role == models.RoleBranchAdmin {
		if p.BranchID == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
		}
		return *p.BranchID, nil
	}
	if requested == nil || *requested == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id zorunlu")
	}
	return *requested, nil
}
