package order

import (
	"fmt"
	"time"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/audit"
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/models"
	"restoran-pos/internal/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type OrderItemRequest struct {
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"`
}

type CreateOrderRequest struct {
	TableID      *uint              `json:"table_id"`
	CustomerID   *uint              `json:"customer_id"`
	DiningOption string             `json:"dining_option"`
	Status       string             `json:"status"` // draft veya pending, boşsa pending
	Discount     float64            `json:"discount"`
	DiscountType string             `json:"discount_type"`
	Items        []OrderItemRequest `json:"items"`
	BranchID     *uint              `json:"branch_id"` // super_admin için
}

type UpdateOrderRequest struct {
	Discount     *float64 `json:"discount"`
	DiscountType *string  `json:"discount_type"`
	CreatedAt    *string  `json:"created_at"` // "2025-12-09 18:30" veya "2025-12-09"
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CheckoutRequest struct {
	AmountPaid      *float64        `json:"amount_paid"`
	PaymentMethod   string          `json:"payment_method"`
	Splits          []payment.Split `json:"splits"`
	SplitByCustomer bool            `json:"split_by_customer"`
	CustomerID      *uint           `json:"customer_id"`
}

type OrderItemResponse struct {
	ID        uint    `json:"id"`
	ProductID uint    `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
}

type OrderResponse struct {
	ID            uint                `json:"id"`
	OrderNumber   string              `json:"order_number"`
	BranchID      uint                `json:"branch_id"`
	TableID       *uint               `json:"table_id"`
	CustomerID    *uint               `json:"customer_id"`
	DiningOption  string              `json:"dining_option"`
	Status        string              `json:"status"`
	Subtotal      float64             `json:"subtotal"`
	Discount      float64             `json:"discount"`
	DiscountType  string              `json:"discount_type"`
	Total         float64             `json:"total"`
	PaidAmount    float64             `json:"paid_amount"`
	DueAmount     float64             `json:"due_amount"`
	ChangeAmount  float64             `json:"change_amount"`
	PaymentMethod string              `json:"payment_method"`
	PaymentStatus string              `json:"payment_status"`
	PaymentSplits []payment.Split     `json:"payment_splits,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     string              `json:"created_at"`
	CompletedAt   *string             `json:"completed_at"`
}

func toOrderResponse(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Total:     it.Total,
		})
	}

	// Kolondaki JSON sınırda yeniden doğrulanarak çözülür
	splits, _ := payment.DecodeSplits(o.PaymentSplits)

	var completedAt *string
	if o.CompletedAt != nil {
		s := o.CompletedAt.Format(time.RFC3339)
		completedAt = &s
	}

	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		BranchID:      o.BranchID,
		TableID:       o.TableID,
		CustomerID:    o.CustomerID,
		DiningOption:  string(o.DiningOption),
		Status:        string(o.Status),
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		DiscountType:  string(o.DiscountType),
		Total:         o.Total,
		PaidAmount:    o.PaidAmount,
		DueAmount:     o.DueAmount,
		ChangeAmount:  o.ChangeAmount,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: string(o.PaymentStatus),
		PaymentSplits: splits,
		Items:         items,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		CompletedAt:   completedAt,
	}
}

// Siparişi yükleyip şube yetkisini doğrular
func loadOrderForPrincipal(c *fiber.Ctx, p auth.Principal) (*models.Order, error) {
	id := c.Params("id")
	var o models.Order
	if err := database.DB.Preload("Items").First(&o, "id = ?", id).Error; err != nil {
		return nil, apperr.NotFound("Sipariş bulunamadı")
	}
	if !p.CanAccessBranch(o.BranchID) {
		return nil, fiber.NewError(fiber.StatusForbidden, "Bu siparişe erişim yetkiniz yok")
	}
	return &o, nil
}

// POST /api/orders
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}

		branchID, err := auth.ResolveBranchID(p, body.BranchID)
		if err != nil {
			return err
		}

		items := make([]NewItemInput, 0, len(body.Items))
		for _, it := range body.Items {
			items = append(items, NewItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
		}

		var o *models.Order
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			o, txErr = CreateOrder(tx, CreateOrderInput{
				BranchID:     branchID,
				TableID:      body.TableID,
				CustomerID:   body.CustomerID,
				DiningOption: models.DiningOption(body.DiningOption),
				Status:       models.OrderStatus(body.Status),
				Discount:     body.Discount,
				DiscountType: models.DiscountType(body.DiscountType),
				Items:        items,
			})
			return txErr
		})
		if err != nil {
			return err
		}

		if logErr := audit.WriteLog(database.DB, audit.LogOptions{
			BranchID:    &o.BranchID,
			UserID:      p.UserID,
			UserName:    p.Name,
			EntityType:  "order",
			EntityID:    o.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Sipariş oluşturuldu: %s, %.2f TL", o.OrderNumber, o.Total),
			After:       toOrderResponse(o),
		}); logErr != nil {
			log.Warn().Err(logErr).Msg("Audit log yazılamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(o))
	}
}

// GET /api/orders?status=...&customer_id=...
func ListOrdersHandler() fiber.Handler {
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

		dbq := database.DB.Model(&models.Order{}).
			Preload("Items").
			Where("branch_id = ?", branchID)

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if customerID := c.QueryInt("customer_id", 0); customerID != 0 {
			dbq = dbq.Where("customer_id = ?", customerID)
		}

		var orders []models.Order
		if err := dbq.Order("created_at desc, id desc").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		resp := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, toOrderResponse(&orders[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/orders/:id
func GetOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}
		o, err := loadOrderForPrincipal(c, p)
		if err != nil {
			return err
		}
		return c.JSON(toOrderResponse(o))
	}
}

// POST /api/orders/:id/items
func AddItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}
		existing, err := loadOrderForPrincipal(c, p)
		if err != nil {
			return err
		}

		var body OrderItemRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}

		var o *models.Order
		var item *models.OrderItem
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			o, item, txErr = AddItem(tx, existing.ID, NewItemInput{
				ProductID: body.ProductID,
				Quantity:  body.Quantity,
			})
			return txErr
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"item": OrderItemResponse{
				ID:        item.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Total:     item.Total,
			},
			"order": toOrderResponse(o),
		})
	}
}

// PATCH /api/orders/:id
func UpdateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}
		existing, err := loadOrderForPrincipal(c, p)
		if err != nil {
			return err
		}

		var body UpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}

		input := UpdateOrderInput{Discount: body.Discount}
		if body.DiscountType != nil {
			dt := models.DiscountType(*body.DiscountType)
			input.DiscountType = &dt
		}
		if body.CreatedAt != nil {
			t, parseErr := time.Parse("2006-01-02 15:04", *body.CreatedAt)
			if parseErr != nil {
				t, parseErr = time.Parse("2006-01-02", *body.CreatedAt)
			}
			if parseErr != nil {
				return apperr.BadRequest(apperr.CodeValidation, "created_at formatı 'YYYY-MM-DD HH:MM' veya 'YYYY-MM-DD' olmalı")
			}
			input.CreatedAt = &t
		}

		var o *models.Order
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			o, txErr = UpdateOrder(tx, existing.ID, input)
			return txErr
		})
		if err != nil {
			return err
		}

		return c.JSON(toOrderResponse(o))
	}
}

// PATCH /api/orders/:id/status
func UpdateStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}
		existing, err := loadOrderForPrincipal(c, p)
		if err != nil {
			return err
		}

		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil || body.Status == "" {
			return apperr.BadRequest(apperr.CodeValidation, "status zorunlu")
		}

		var o *models.Order
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			o, txErr = UpdateStatus(tx, existing.ID, models.OrderStatus(body.Status))
			return txErr
		})
		if err != nil {
			return err
		}

		if logErr := audit.WriteLog(database.DB, audit.LogOptions{
			BranchID:    &o.BranchID,
			UserID:      p.UserID,
			UserName:    p.Name,
			EntityType:  "order",
			EntityID:    o.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Sipariş durumu değişti: %s, %s → %s", o.OrderNumber, existing.Status, o.Status),
			Before:      fiber.Map{"status": existing.Status},
			After:       fiber.Map{"status": o.Status},
		}); logErr != nil {
			log.Warn().Err(logErr).Msg("Audit log yazılamadı")
		}

		return c.JSON(toOrderResponse(o))
	}
}

// POST /api/orders/:id/checkout
func CheckoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}
		existing, err := loadOrderForPrincipal(c, p)
		if err != nil {
			return err
		}

		var body CheckoutRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.BadRequest(apperr.CodeValidation, "Geçersiz istek gövdesi")
		}

		var o *models.Order
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			o, txErr = Checkout(tx, existing.ID, CheckoutInput{
				AmountPaid:      body.AmountPaid,
				PaymentMethod:   body.PaymentMethod,
				Splits:          body.Splits,
				SplitByCustomer: body.SplitByCustomer,
				CustomerID:      body.CustomerID,
			})
			return txErr
		})
		if err != nil {
			return err
		}

		if logErr := audit.WriteLog(database.DB, audit.LogOptions{
			BranchID:   &o.BranchID,
			UserID:     p.UserID,
			UserName:   p.Name,
			EntityType: "order",
			EntityID:   o.ID,
			Action:     models.AuditActionUpdate,
			Description: fmt.Sprintf("Sipariş tamamlandı: %s, ödenen %.2f, para üstü %.2f, veresiye %.2f",
				o.OrderNumber, o.PaidAmount, o.ChangeAmount, o.DueAmount),
			After: toOrderResponse(o),
		}); logErr != nil {
			log.Warn().Err(logErr).Msg("Audit log yazılamadı")
		}

		return c.JSON(toOrderResponse(o))
	}
}
