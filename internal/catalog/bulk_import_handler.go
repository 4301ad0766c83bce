package catalog

import (
	"restoran-pos/internal/apperr"
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"

	"github.com/gofiber/fiber/v2"
)

type BulkImportRequest struct {
	Rows     []ProductRow `json:"rows"`
	BranchID *uint        `json:"branch_id"` // super_admin için
}

// POST /api/catalog/products/bulk-import
func BulkImportProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		var body BulkImportRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}
		if len(body.Rows) == 0 {
			return apperr.BadRequest(apperr.CodeValidation, "rows boş olamaz")
		}

		branchID, err := auth.ResolveBranchID(p, body.BranchID)
		if err != nil {
			return err
		}

		report := BulkImportProducts(database.DB, branchID, body.Rows)
		return c.Status(fiber.StatusCreated).JSON(report)
	}
}
