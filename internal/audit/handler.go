package audit

import (
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint   `json:"id"`
	BranchID    *uint  `json:"branch_id"`
	UserID      uint   `json:"user_id"`
	UserName    string `json:"user_name"`
	EntityType  string `json:"entity_type"`
	EntityID    uint   `json:"entity_id"`
	Action      string `json:"action"`
	Description string `json:"description"`
	BeforeData  string `json:"before_data"`
	AfterData   string `json:"after_data"`
	CreatedAt   string `json:"created_at"`
}

// GET /api/audit-logs?entity_type=...&limit=...
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.AuditLog{})

		// branch_admin yalnızca kendi şubesinin loglarını görür
		if !p.IsSuperAdmin() {
			if p.BranchID == nil {
				return fiber.NewError(fiber.StatusForbidden, "Şube bilgisi bulunamadı")
			}
			dbq = dbq.Where("branch_id = ?", *p.BranchID)
		}

		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}

		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at desc, id desc").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				BranchID:    l.BranchID,
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      string(l.Action),
				Description: l.Description,
				BeforeData:  l.BeforeData,
				AfterData:   l.AfterData,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(resp)
	}
}
