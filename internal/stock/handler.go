package stock

import (
	"fmt"
	"strings"
	"time"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/audit"
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CreateAdjustmentRequest struct {
	ProductID      uint    `json:"product_id"`
	AdjustmentType string  `json:"adjustment_type"` // add, remove, set
	Quantity       float64 `json:"quantity"`
	Reason         string  `json:"reason"`
	Notes          string  `json:"notes"`
}

type AdjustmentResponse struct {
	ID             uint    `json:"id"`
	BranchID       uint    `json:"branch_id"`
	ProductID      uint    `json:"product_id"`
	ProductName    string  `json:"product_name"`
	AdjustmentType string  `json:"adjustment_type"`
	Quantity       float64 `json:"quantity"`
	Reason         string  `json:"reason"`
	Notes          string  `json:"notes"`
	CreatedAt      string  `json:"created_at"`
}

type LowStockProductResponse struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// POST /api/inventory/adjustments
func CreateAdjustmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateAdjustmentRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}

		if body.ProductID == 0 {
			return apperr.BadRequest(apperr.CodeValidation, "product_id zorunlu")
		}
		if strings.TrimSpace(body.Reason) == "" {
			return apperr.BadRequest(apperr.CodeValidation, "reason zorunlu")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return apperr.NotFound("Ürün bulunamadı")
		}
		if !p.CanAccessBranch(product.BranchID) {
			return fiber.NewError(fiber.StatusForbidden, "Bu ürüne erişim yetkiniz yok")
		}

		var adj *models.InventoryAdjustment
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			adj, txErr = Adjust(tx, body.ProductID, models.AdjustmentType(body.AdjustmentType),
				body.Quantity, strings.TrimSpace(body.Reason), strings.TrimSpace(body.Notes))
			return txErr
		})
		if err != nil {
			return err
		}

		if logErr := audit.WriteLog(database.DB, audit.LogOptions{
			BranchID:   &product.BranchID,
			UserID:     p.UserID,
			UserName:   p.Name,
			EntityType: "inventory_adjustment",
			EntityID:   adj.ID,
			Action:     models.AuditActionCreate,
			Description: fmt.Sprintf("Stok düzeltmesi: %s %s %.2f (%s)",
				product.Name, adj.AdjustmentType, adj.Quantity, adj.Reason),
			After: adj,
		}); logErr != nil {
			log.Warn().Err(logErr).Msg("Audit log yazılamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(AdjustmentResponse{
			ID:             adj.ID,
			BranchID:       adj.BranchID,
			ProductID:      adj.ProductID,
			ProductName:    product.Name,
			AdjustmentType: string(adj.AdjustmentType),
			Quantity:       adj.Quantity,
			Reason:         adj.Reason,
			Notes:          adj.Notes,
			CreatedAt:      adj.CreatedAt.Format(time.RFC3339),
		})
	}
}

// GET /api/inventory/adjustments?product_id=...
func ListAdjustmentsHandler() fiber.Handler {
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

		dbq := database.DB.Model(&models.InventoryAdjustment{}).
			Preload("Product").
			Where("branch_id = ?", branchID)

		if productID := c.QueryInt("product_id", 0); productID != 0 {
			dbq = dbq.Where("product_id = ?", productID)
		}

		var adjustments []models.InventoryAdjustment
		if err := dbq.Order("created_at desc, id desc").Find(&adjustments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketleri listelenemedi")
		}

		resp := make([]AdjustmentResponse, 0, len(adjustments))
		for _, a := range adjustments {
			resp = append(resp, AdjustmentResponse{
				ID:             a.ID,
				BranchID:       a.BranchID,
				ProductID:      a.ProductID,
				ProductName:    a.Product.Name,
				AdjustmentType: string(a.AdjustmentType),
				Quantity:       a.Quantity,
				Reason:         a.Reason,
				Notes:          a.Notes,
				CreatedAt:      a.CreatedAt.Format(time.RFC3339),
			})
		}

		return c.JSON(resp)
	}
}

// GET /api/inventory/low-stock?threshold=N
func LowStockHandler() fiber.Handler {
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

		threshold := c.QueryFloat("threshold", 10)
		if threshold < 0 {
			return apperr.BadRequest(apperr.CodeValidation, "threshold negatif olamaz")
		}

		products, err := LowStock(database.DB, branchID, threshold)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Düşük stoklu ürünler listelenemedi")
		}

		resp := make([]LowStockProductResponse, 0, len(products))
		for _, pr := range products {
			resp = append(resp, LowStockProductResponse{
				ID:       pr.ID,
				Name:     pr.Name,
				Quantity: pr.Quantity,
				Unit:     pr.Unit,
			})
		}

		return c.JSON(resp)
	}
}
