package catalog

import (
	"strings"
	"time"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateProductRequest struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   float64 `json:"quantity"` // Başlangıç stoğu
	Unit       string  `json:"unit"`
	CategoryID *uint   `json:"category_id"`
	BranchID   *uint   `json:"branch_id"` // super_admin için
}

type UpdateProductRequest struct {
	Name       *string  `json:"name"`
	Price      *float64 `json:"price"`
	Unit       *string  `json:"unit"`
	CategoryID *uint    `json:"category_id"`
}

type ProductResponse struct {
	ID         uint    `json:"id"`
	BranchID   uint    `json:"branch_id"`
	CategoryID *uint   `json:"category_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	CreatedAt  string  `json:"created_at"`
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		BranchID:   p.BranchID,
		CategoryID: p.CategoryID,
		Name:       p.Name,
		Price:      p.Price,
		Quantity:   p.Quantity,
		Unit:       p.Unit,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

// POST /api/catalog/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || strings.TrimSpace(body.Unit) == "" {
			return apperr.BadRequest(apperr.CodeValidation, "name ve unit zorunlu")
		}
		if body.Price < 0 || body.Quantity < 0 {
			return apperr.BadRequest(apperr.CodeValidation, "price ve quantity negatif olamaz")
		}

		branchID, err := auth.ResolveBranchID(p, body.BranchID)
		if err != nil {
			return err
		}

		// Aynı şubede aynı isimle ürün olamaz
		var count int64
		database.DB.Model(&models.Product{}).
			Where("branch_id = ? AND name = ?", branchID, body.Name).
			Count(&count)
		if count > 0 {
			return apperr.Conflict("Bu isimde bir ürün zaten var")
		}

		product := models.Product{
			BranchID:   branchID,
			CategoryID: body.CategoryID,
			Name:       body.Name,
			Price:      body.Price,
			Quantity:   body.Quantity,
			Unit:       strings.TrimSpace(body.Unit),
		}

		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&product))
	}
}

// GET /api/catalog/products?category_id=...
func ListProductsHandler() fiber.Handler {
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

		dbq := database.DB.Model(&models.Product{}).Where("branch_id = ?", branchID)
		if categoryID := c.QueryInt("category_id", 0); categoryID != 0 {
			dbq = dbq.Where("category_id = ?", categoryID)
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		resp := make([]ProductResponse, 0, len(products))
		for i := range products {
			resp = append(resp, toProductResponse(&products[i]))
		}
		return c.JSON(resp)
	}
}

// PUT /api/catalog/products/:id
// Not: quantity buradan güncellenemez; stok yalnızca Stock Ledger üzerinden değişir.
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		id := c.Params("id")
		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return apperr.NotFound("Ürün bulunamadı")
		}
		if !p.CanAccessBranch(product.BranchID) {
			return fiber.NewError(fiber.StatusForbidden, "Bu ürüne erişim yetkiniz yok")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return apperr.BadRequest(apperr.CodeValidation, "name boş olamaz")
			}
			var count int64
			database.DB.Model(&models.Product{}).
				Where("branch_id = ? AND name = ? AND id != ?", product.BranchID, name, product.ID).
				Count(&count)
			if count > 0 {
				return apperr.Conflict("Bu isimde bir ürün zaten var")
			}
			product.Name = name
		}
		if body.Price != nil {
			if *body.Price < 0 {
				return apperr.BadRequest(apperr.CodeValidation, "price negatif olamaz")
			}
			product.Price = *body.Price
		}
		if body.Unit != nil {
			unit := strings.TrimSpace(*body.Unit)
			if unit == "" {
				return apperr.BadRequest(apperr.CodeValidation, "unit boş olamaz")
			}
			product.Unit = unit
		}
		if body.CategoryID != nil {
			product.CategoryID = body.CategoryID
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		return c.JSON(toProductResponse(&product))
	}
}

// DELETE /api/catalog/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		id := c.Params("id")
		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return apperr.NotFound("Ürün bulunamadı")
		}
		if !p.CanAccessBranch(product.BranchID) {
			return fiber.NewError(fiber.StatusForbidden, "Bu ürüne erişim yetkiniz yok")
		}

		// Sipariş kalemlerinde geçen ürün silinemez
		var itemCount int64
		database.DB.Model(&models.OrderItem{}).
			Where("product_id = ?", product.ID).
			Count(&itemCount)
		if itemCount > 0 {
			return apperr.Conflict("Ürün siparişlerde kullanılmış, silinemez")
		}

		if err := database.DB.Delete(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
