package order

import (
	"time"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Toplu satış içe aktarma. Kasıtlı kısmi başarı sözleşmesi: her satır kendi
// transaction'ında bağımsız uygulanır ve doğrulanır, yanıt satır satır
// başarı/başarısızlık raporlar; uygulanmış satırlar geri alınmaz.

type BulkSaleRow struct {
	Date          string             `json:"date"` // "2025-12-09", geçmiş satış kaydı için
	Items         []OrderItemRequest `json:"items"`
	Discount      float64            `json:"discount"`
	DiscountType  string             `json:"discount_type"`
	AmountPaid    float64            `json:"amount_paid"`
	PaymentMethod string             `json:"payment_method"`
	CustomerID    *uint              `json:"customer_id"`
}

type BulkImportSalesRequest struct {
	Rows     []BulkSaleRow `json:"rows"`
	BranchID *uint         `json:"branch_id"` // super_admin için
}

type BulkRowResult struct {
	Row         int    `json:"row"` // 1 tabanlı satır numarası
	OrderNumber string `json:"order_number,omitempty"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

type BulkImportSalesResponse struct {
	Imported int             `json:"imported"`
	Failed   int             `json:"failed"`
	Results  []BulkRowResult `json:"results"`
}

func importSaleRow(branchID uint, row BulkSaleRow) (string, error) {
	items := make([]NewItemInput, 0, len(row.Items))
	for _, it := range row.Items {
		items = append(items, NewItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	method := row.PaymentMethod
	if method == "" {
		method = "cash"
	}

	var number string
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		o, txErr := CreateOrder(tx, CreateOrderInput{
			BranchID:     branchID,
			CustomerID:   row.CustomerID,
			DiningOption: models.DiningTakeout,
			Status:       models.OrderStatusPending,
			Discount:     row.Discount,
			DiscountType: models.DiscountType(row.DiscountType),
			Items:        items,
		})
		if txErr != nil {
			return txErr
		}

		amountPaid := row.AmountPaid
		if amountPaid == 0 {
			amountPaid = o.Total // Tutar verilmemişse tam tahsil varsayılır
		}
		o, txErr = Checkout(tx, o.ID, CheckoutInput{
			AmountPaid:    &amountPaid,
			PaymentMethod: method,
			CustomerID:    row.CustomerID,
		})
		if txErr != nil {
			return txErr
		}

		if row.Date != "" {
			d, parseErr := time.Parse("2006-01-02", row.Date)
			if parseErr != nil {
				return apperr.BadRequest(apperr.CodeValidation, "date formatı 'YYYY-MM-DD' olmalı")
			}
			if txErr := tx.Model(&models.Order{}).Where("id = ?", o.ID).
				Update("created_at", d).Error; txErr != nil {
				return txErr
			}
		}

		number = o.OrderNumber
		return nil
	})
	return number, err
}

// POST /api/orders/bulk-import
func BulkImportSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		var body BulkImportSalesRequest
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

		resp := BulkImportSalesResponse{Results: make([]BulkRowResult, 0, len(body.Rows))}
		for i, row := range body.Rows {
			number, rowErr := importSaleRow(branchID, row)
			if rowErr != nil {
				resp.Failed++
				resp.Results = append(resp.Results, BulkRowResult{
					Row:     i + 1,
					Success: false,
					Error:   rowErr.Error(),
				})
				continue
			}
			resp.Imported++
			resp.Results = append(resp.Results, BulkRowResult{
				Row:         i + 1,
				OrderNumber: number,
				Success:     true,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}
