package catalog

import (
	"strings"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateCategoryRequest struct {
	Name     string `json:"name"`
	BranchID *uint  `json:"branch_id"` // super_admin için
}

type CategoryResponse struct {
	ID       uint   `json:"id"`
	BranchID uint   `json:"branch_id"`
	Name     string `json:"name"`
}

// POST /api/catalog/categories
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return apperr.BadRequest(apperr.CodeValidation, "name zorunlu")
		}

		branchID, err := auth.ResolveBranchID(p, body.BranchID)
		if err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.ProductCategory{}).
			Where("branch_id = ? AND name = ?", branchID, body.Name).
			Count(&count)
		if count > 0 {
			return apperr.Conflict("Bu isimde bir kategori zaten var")
		}

		category := models.ProductCategory{BranchID: branchID, Name: body.Name}
		if err := database.DB.Create(&category).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(CategoryResponse{
			ID:       category.ID,
			BranchID: category.BranchID,
			Name:     category.Name,
		})
	}
}

// GET /api/catalog/categories
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		var requested *uint
		if v := uint(c.QueryInt("branch_id", 0)); v != 0 {
			requested = &v
		}
		branchID, err := auth.ResolveBranchID(p, requested)
		if err != nil {
			return err
		}

		var categories []models.ProductCategory
		if err := database.DB.Where("branch_id = ?", branchID).
			Order("name asc").Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategoriler listelenemedi")
		}

		resp := make([]CategoryResponse, 0, len(categories))
		for _, cat := range categories {
			resp = append(resp, CategoryResponse{ID: cat.ID, BranchID: cat.BranchID, Name: cat.Name})
		}
		return c.JSON(resp)
	}
}

// DELETE /api/catalog/categories/:id
func DeleteCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		id := c.Params("id")
		var category models.ProductCategory
		if err := database.DB.First(&category, "id = ?", id).Error; err != nil {
			return apperr.NotFound("Kategori bulunamadı")
		}
		if !p.CanAccessBranch(category.BranchID) {
			return fiber.NewError(fiber.StatusForbidden, "Bu kategoriye erişim yetkiniz yok")
		}

		var productCount int64
		database.DB.Model(&models.Product{}).
			Where("category_id = ?", category.ID).
			Count(&productCount)
		if productCount > 0 {
			return apperr.Conflict("Kategoride ürün var, silinemez")
		}

		if err := database.DB.Delete(&category).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
