package due

import (
	"fmt"
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

type RecordPaymentRequest struct {
	CustomerID  uint              `json:"customer_id"`
	Amount      float64           `json:"amount"`
	Method      string            `json:"method"`
	Allocations []AllocationInput `json:"allocations"` // Boşsa FIFO otomatik dağıtım
	BranchID    *uint             `json:"branch_id"`   // super_admin için
}

type AllocationResponse struct {
	ID           uint    `json:"id"`
	DuePaymentID uint    `json:"due_payment_id"`
	OrderID      uint    `json:"order_id"`
	OrderNumber  string  `json:"order_number,omitempty"`
	Amount       float64 `json:"amount"`
}

type DuePaymentResponse struct {
	ID          uint                 `json:"id"`
	BranchID    uint                 `json:"branch_id"`
	CustomerID  uint                 `json:"customer_id"`
	Amount      float64              `json:"amount"`
	Method      string               `json:"method"`
	Allocations []AllocationResponse `json:"allocations"`
	CreatedAt   string               `json:"created_at"`
}

type DueOrderSummary struct {
	OrderID     uint    `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	Total       float64 `json:"total"`
	DueAmount   float64 `json:"due_amount"`
	CreatedAt   string  `json:"created_at"`
}

type CustomerDueSummaryResponse struct {
	CustomerID   uint              `json:"customer_id"`
	CustomerName string            `json:"customer_name"`
	TotalDue     float64           `json:"total_due"`
	Orders       []DueOrderSummary `json:"orders"`
}

func toDuePaymentResponse(dp *models.DuePayment) DuePaymentResponse {
	allocations := make([]AllocationResponse, 0, len(dp.Allocations))
	for _, a := range dp.Allocations {
		allocations = append(allocations, AllocationResponse{
			ID:           a.ID,
			DuePaymentID: a.DuePaymentID,
			OrderID:      a.OrderID,
			OrderNumber:  a.Order.OrderNumber,
			Amount:       a.Amount,
		})
	}
	return DuePaymentResponse{
		ID:          dp.ID,
		BranchID:    dp.BranchID,
		CustomerID:  dp.CustomerID,
		Amount:      dp.Amount,
		Method:      dp.Method,
		Allocations: allocations,
		CreatedAt:   dp.CreatedAt.Format(time.RFC3339),
	}
}

// POST /api/due/payments
func RecordPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		var body RecordPaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}
		if body.CustomerID == 0 {
			return apperr.BadRequest(apperr.CodeValidation, "customer_id zorunlu")
		}

		branchID, err := auth.ResolveBranchID(p, body.BranchID)
		if err != nil {
			return err
		}

		var dp *models.DuePayment
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			dp, txErr = RecordPayment(tx, branchID, body.CustomerID, body.Amount, body.Method, body.Allocations)
			return txErr
		})
		if err != nil {
			return err
		}

		if logErr := audit.WriteLog(database.DB, audit.LogOptions{
			BranchID:    &branchID,
			UserID:      p.UserID,
			UserName:    p.Name,
			EntityType:  "due_payment",
			EntityID:    dp.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Veresiye tahsilatı: müşteri %d, %.2f TL (%s)", dp.CustomerID, dp.Amount, dp.Method),
			After:       toDuePaymentResponse(dp),
		}); logErr != nil {
			log.Warn().Err(logErr).Msg("Audit log yazılamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toDuePaymentResponse(dp))
	}
}

// GET /api/due/payments?customer_id=...
func ListPaymentsHandler() fiber.Handler {
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

		dbq := database.DB.Model(&models.DuePayment{}).
			Preload("Allocations").
			Preload("Allocations.Order").
			Where("branch_id = ?", branchID)

		if customerID := c.QueryInt("customer_id", 0); customerID != 0 {
			dbq = dbq.Where("customer_id = ?", customerID)
		}

		var payments []models.DuePayment
		if err := dbq.Order("created_at desc, id desc").Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tahsilatlar listelenemedi")
		}

		resp := make([]DuePaymentResponse, 0, len(payments))
		for i := range payments {
			resp = append(resp, toDuePaymentResponse(&payments[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/due/payments/:id/allocations
func ListAllocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		id := c.Params("id")
		var dp models.DuePayment
		if err := database.DB.
			Preload("Allocations").
			Preload("Allocations.Order").
			First(&dp, "id = ?", id).Error; err != nil {
			return apperr.NotFound("Tahsilat bulunamadı")
		}
		if !p.CanAccessBranch(dp.BranchID) {
			return fiber.NewError(fiber.StatusForbidden, "Bu tahsilata erişim yetkiniz yok")
		}

		resp := toDuePaymentResponse(&dp)
		return c.JSON(resp.Allocations)
	}
}

// GET /api/due/customers/:id/summary
func CustomerDueSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		id := c.Params("id")
		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return apperr.NotFound("Müşteri bulunamadı")
		}
		if customer.BranchID != nil && !p.CanAccessBranch(*customer.BranchID) {
			return fiber.NewError(fiber.StatusForbidden, "Bu müşteriye erişim yetkiniz yok")
		}

		total, orders, err := CustomerDueSummary(database.DB, customer.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Borç özeti hesaplanamadı")
		}

		summaries := make([]DueOrderSummary, 0, len(orders))
		for _, o := range orders {
			summaries = append(summaries, DueOrderSummary{
				OrderID:     o.ID,
				OrderNumber: o.OrderNumber,
				Total:       o.Total,
				DueAmount:   o.DueAmount,
				CreatedAt:   o.CreatedAt.Format(time.RFC3339),
			})
		}

		return c.JSON(CustomerDueSummaryResponse{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			TotalDue:     total,
			Orders:       summaries,
		})
	}
}
