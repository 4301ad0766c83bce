package table

import (
	"strings"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateTableRequest struct {
	Name     string `json:"name"`
	BranchID *uint  `json:"branch_id"` // super_admin için
}

type TableResponse struct {
	ID       uint   `json:"id"`
	BranchID uint   `json:"branch_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

// POST /api/tables
func CreateTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateTableRequest
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

		t := models.Table{
			BranchID: branchID,
			Name:     body.Name,
			Status:   models.TableAvailable,
		}
		if err := database.DB.Create(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Masa oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(TableResponse{
			ID:       t.ID,
			BranchID: t.BranchID,
			Name:     t.Name,
			Status:   string(t.Status),
		})
	}
}

// GET /api/tables
func ListTablesHandler() fiber.Handler {
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

		var tables []models.Table
		if err := database.DB.Where("branch_id = ?", branchID).
			Order("name asc").Find(&tables).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Masalar listelenemedi")
		}

		resp := make([]TableResponse, 0, len(tables))
		for _, t := range tables {
			resp = append(resp, TableResponse{
				ID:       t.ID,
				BranchID: t.BranchID,
				Name:     t.Name,
				Status:   string(t.Status),
			})
		}
		return c.JSON(resp)
	}
}

// DELETE /api/tables/:id
func DeleteTableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		id := c.Params("id")
		var t models.Table
		if err := database.DB.First(&t, "id = ?", id).Error; err != nil {
			return apperr.NotFound("Masa bulunamadı")
		}
		if !p.CanAccessBranch(t.BranchID) {
			return fiber.NewError(fiber.StatusForbidden, "Bu masaya erişim yetkiniz yok")
		}
		if t.Status == models.TableOccupied {
			return apperr.Conflict("Dolu masa silinemez")
		}

		if err := database.DB.Delete(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Masa silinemedi")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
