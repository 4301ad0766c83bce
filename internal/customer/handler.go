package customer

import (
	"strings"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateCustomerRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	BranchID *uint  `json:"branch_id"` // super_admin için
}

type CustomerResponse struct {
	ID       uint   `json:"id"`
	BranchID *uint  `json:"branch_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// POST /api/customers
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateCustomerRequest
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

		cust := models.Customer{
			BranchID: &branchID,
			Name:     body.Name,
			Phone:    strings.TrimSpace(body.Phone),
		}
		if err := database.DB.Create(&cust).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(CustomerResponse{
			ID:       cust.ID,
			BranchID: cust.BranchID,
			Name:     cust.Name,
			Phone:    cust.Phone,
		})
	}
}

// GET /api/customers?phone=...
func ListCustomersHandler() fiber.Handler {
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

		dbq := database.DB.Model(&models.Customer{}).Where("branch_id = ?", branchID)
		if phone := c.Query("phone"); phone != "" {
			dbq = dbq.Where("phone = ?", phone)
		}

		var customers []models.Customer
		if err := dbq.Order("name asc").Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteriler listelenemedi")
		}

		resp := make([]CustomerResponse, 0, len(customers))
		for _, cust := range customers {
			resp = append(resp, CustomerResponse{
				ID:       cust.ID,
				BranchID: cust.BranchID,
				Name:     cust.Name,
				Phone:    cust.Phone,
			})
		}
		return c.JSON(resp)
	}
}
