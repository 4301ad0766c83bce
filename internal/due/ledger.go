package due

import (
	"fmt"
	"strings"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/models"
	"restoran-pos/internal/payment"

	"gorm.io/gorm"
)

// Müşteri veresiye defteri. Bir müşterinin borcu, completed siparişlerindeki
// due_amount toplamıdır. DuePayment ve allocation satırları yalnızca buradan
// yazılır ve yazıldıktan sonra değişmez.

type AllocationInput struct {
	OrderID uint    `json:"order_id"`
	Amount  float64 `json:"amount"`
}

// AllocateFIFO - Ödemeyi açık siparişlere eskiden yeniye dağıtır. orders
// created_at artan sırada verilmelidir. Toplam borcu aşan kalan tutar
// reddedilir; müşteri lehine alacak bakiyesi modellenmez.
func AllocateFIFO(orders []models.Order, amount float64) ([]AllocationInput, error) {
	remaining := payment.Round2(amount)
	allocations := make([]AllocationInput, 0, len(orders))

	for _, o := range orders {
		if remaining <= 0 {
			break
		}
		if o.DueAmount <= 0 {
			continue
		}
		a := o.DueAmount
		if a > remaining {
			a = remaining
		}
		a = payment.Round2(a)
		allocations = append(allocations, AllocationInput{OrderID: o.ID, Amount: a})
		remaining = payment.Round2(remaining - a)
	}

	if remaining > 0 {
		return nil, apperr.BadRequest(apperr.CodeOverAllocation,
			fmt.Sprintf("Ödeme toplam borcu aşıyor: %.2f artıyor", remaining))
	}
	return allocations, nil
}

// RecordPayment - Veresiye tahsilatı. Bir DuePayment satırı, her dağıtım için
// bir allocation satırı yazar ve ilgili siparişlerin due_amount alanını koşullu
// UPDATE ile düşer. Tamamı tek transaction içinde yapılır: herhangi bir adım
// başarısız olursa hiçbir kayıt kalıcılaşmaz. allocations boş verilirse FIFO
// otomatik dağıtım uygulanır.
func RecordPayment(tx *gorm.DB, branchID, customerID uint, amount float64, method string, allocations []AllocationInput) (*models.DuePayment, error) {
	if amount <= 0 {
		return nil, apperr.BadRequest(apperr.CodeValidation, "amount 0'dan büyük olmalı")
	}
	if strings.TrimSpace(method) == "" {
		return nil, apperr.BadRequest(apperr.CodeValidation, "method zorunlu")
	}

	var customer models.Customer
	if err := tx.First(&customer, "id = ?", customerID).Error; err != nil {
		return nil, apperr.NotFound("Müşteri bulunamadı")
	}

	amount = payment.Round2(amount)

	if len(allocations) == 0 {
		open, err := outstandingOrders(tx, customerID)
		if err != nil {
			return nil, err
		}
		allocations, err = AllocateFIFO(open, amount)
		if err != nil {
			return nil, err
		}
	} else {
		sum := 0.0
		for i, a := range allocations {
			if a.OrderID == 0 || a.Amount <= 0 {
				return nil, apperr.BadRequest(apperr.CodeValidation,
					fmt.Sprintf("Dağıtım %d: order_id zorunlu, amount 0'dan büyük olmalı", i+1))
			}
			sum += a.Amount
		}
		// Dağıtım toplamı ödeme tutarına birebir eşit olmak zorunda
		if payment.Round2(sum) != amount {
			return nil, apperr.BadRequest(apperr.CodeAllocationMismatch,
				fmt.Sprintf("Dağıtım toplamı (%.2f) ödeme tutarına (%.2f) eşit değil", payment.Round2(sum), amount))
		}
	}

	for _, a := range allocations {
		var o models.Order
		if err := tx.First(&o, "id = ?", a.OrderID).Error; err != nil {
			return nil, apperr.NotFound(fmt.Sprintf("Sipariş bulunamadı (ID: %d)", a.OrderID))
		}
		if o.CustomerID == nil || *o.CustomerID != customerID {
			return nil, apperr.BadRequest(apperr.CodeValidation,
				fmt.Sprintf("Sipariş %s bu müşteriye ait değil", o.OrderNumber))
		}

		// due_amount >= a.Amount guard'ı: eşzamanlı tahsilatlarda borcun
		// sıfırın altına düşmesini veritabanı engeller
		res := tx.Model(&models.Order{}).
			Where("id = ? AND due_amount >= ?", a.OrderID, a.Amount).
			UpdateColumn("due_amount", gorm.Expr("due_amount - ?", a.Amount))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, apperr.BadRequest(apperr.CodeOverAllocation,
				fmt.Sprintf("Dağıtım sipariş %s'in kalan borcunu (%.2f) aşıyor", o.OrderNumber, o.DueAmount))
		}
	}

	dp := models.DuePayment{
		BranchID:   branchID,
		CustomerID: customerID,
		Amount:     amount,
		Method:     strings.TrimSpace(method),
	}
	for _, a := range allocations {
		dp.Allocations = append(dp.Allocations, models.DuePaymentAllocation{
			OrderID: a.OrderID,
			Amount:  a.Amount,
		})
	}

	if err := tx.Create(&dp).Error; err != nil {
		return nil, err
	}
	return &dp, nil
}

// CustomerDueSummary - Müşterinin toplam borcu ve borca katkı veren siparişler.
// Salt okunur.
func CustomerDueSummary(db *gorm.DB, customerID uint) (float64, []models.Order, error) {
	orders, err := outstandingOrders(db, customerID)
	if err != nil {
		return 0, nil, err
	}
	total := 0.0
	for _, o := range orders {
		total += o.DueAmount
	}
	return payment.Round2(total), orders, nil
}

func outstandingOrders(db *gorm.DB, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := db.Where("customer_id = ? AND due_amount > 0 AND status = ?",
		customerID, models.OrderStatusCompleted).
		Order("created_at asc, id asc").
		Find(&orders).Error
	return orders, err
}
