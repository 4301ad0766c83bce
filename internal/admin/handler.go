package admin

import (
	"strings"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateBranchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type CreateBranchAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/admin/branches
func CreateBranchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBranchRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return apperr.BadRequest(apperr.CodeValidation, "name zorunlu")
		}

		branch := models.Branch{
			Name:    body.Name,
			Address: strings.TrimSpace(body.Address),
			Phone:   strings.TrimSpace(body.Phone),
		}
		if err := database.DB.Create(&branch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şube oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(branch)
	}
}

// GET /api/admin/branches
func ListBranchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var branches []models.Branch
		if err := database.DB.Order("name asc").Find(&branches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şubeler listelenemedi")
		}
		return c.JSON(branches)
	}
}

// POST /api/admin/branches/:id/admin
func CreateBranchAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", id).Error; err != nil {
			return apperr.NotFound("Şube bulunamadı")
		}

		var body CreateBranchAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return apperr.BadRequest(apperr.CodeValidation, "İsim, email ve şifre zorunlu")
		}

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			return apperr.Conflict("Bu email ile kayıtlı kullanıcı zaten var")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleBranchAdmin,
			BranchID:     &branch.ID,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"role":      user.Role,
			"branch_id": user.BranchID,
		})
	}
}
