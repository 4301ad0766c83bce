package order

import (
	"fmt"
	"strings"
	"time"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/models"
	"restoran-pos/internal/payment"
	"restoran-pos/internal/stock"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sipariş + kalem agregatının tek mutasyon noktası. Tüm fonksiyonlar çağıranın
// transaction'ı (database.DB.Transaction scope'u) içinde çalışır: sipariş,
// kalemler ve stok düşümleri ya birlikte kalıcılaşır ya da hiçbiri kalıcılaşmaz.

type NewItemInput struct {
	ProductID uint
	Quantity  float64
}

type CreateOrderInput struct {
	BranchID     uint
	TableID      *uint
	CustomerID   *uint
	DiningOption models.DiningOption
	Status       models.OrderStatus // draft veya pending
	Discount     float64
	DiscountType models.DiscountType
	Items        []NewItemInput
}

// CreateOrder - Sepeti kesinleşmiş siparişe çevirir. draft olmayan siparişlerde
// her kalem için stok düşümü aynı transaction içinde yapılır; herhangi bir
// kalemde stok yetersizse tüm sipariş geri alınır.
func CreateOrder(tx *gorm.DB, input CreateOrderInput) (*models.Order, error) {
	if input.Status == "" {
		input.Status = models.OrderStatusPending
	}
	if !ValidInitialStatus(input.Status) {
		return nil, apperr.BadRequest(apperr.CodeValidation, "status 'draft' veya 'pending' olmalı")
	}
	if input.DiningOption == "" {
		input.DiningOption = models.DiningDineIn
	}
	if input.DiningOption != models.DiningDineIn &&
		input.DiningOption != models.DiningTakeout &&
		input.DiningOption != models.DiningDelivery {
		return nil, apperr.BadRequest(apperr.CodeValidation, "dining_option 'dine_in', 'takeout' veya 'delivery' olmalı")
	}
	if input.DiscountType == "" {
		input.DiscountType = models.DiscountAmount
	}
	if input.DiscountType != models.DiscountAmount && input.DiscountType != models.DiscountPercentage {
		return nil, apperr.BadRequest(apperr.CodeValidation, "discount_type 'amount' veya 'percentage' olmalı")
	}
	if input.Discount < 0 {
		return nil, apperr.BadRequest(apperr.CodeValidation, "discount negatif olamaz")
	}
	// Taslak boş kaydedilebilir, kesin sipariş kalemsiz olamaz
	if len(input.Items) == 0 && input.Status != models.OrderStatusDraft {
		return nil, apperr.BadRequest(apperr.CodeValidation, "En az bir kalem eklenmelidir")
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	for i, it := range input.Items {
		if it.ProductID == 0 || it.Quantity <= 0 {
			return nil, apperr.BadRequest(apperr.CodeValidation,
				fmt.Sprintf("Kalem %d: product_id zorunlu, quantity 0'dan büyük olmalı", i+1))
		}
		var product models.Product
		if err := tx.First(&product, "id = ?", it.ProductID).Error; err != nil {
			return nil, apperr.NotFound(fmt.Sprintf("Ürün bulunamadı (ID: %d)", it.ProductID))
		}
		if product.BranchID != input.BranchID {
			return nil, apperr.BadRequest(apperr.CodeValidation,
				fmt.Sprintf("Ürün başka bir şubeye ait: %s", product.Name))
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  it.Quantity,
			Price:     product.Price, // Sipariş anı fiyat anlık görüntüsü
			Total:     ItemTotal(product.Price, it.Quantity),
		})
	}

	subtotal := Subtotal(items)

	number, err := nextOrderNumber(tx, time.Now())
	if err != nil {
		return nil, err
	}

	o := models.Order{
		OrderNumber:  number,
		BranchID:     input.BranchID,
		TableID:      input.TableID,
		CustomerID:   input.CustomerID,
		DiningOption: input.DiningOption,
		Status:       input.Status,
		Subtotal:     subtotal,
		Discount:     input.Discount,
		DiscountType: input.DiscountType,
		Total:        ComputeTotal(subtotal, input.Discount, input.DiscountType),
		Items:        items,
	}

	if err := tx.Create(&o).Error; err != nil {
		return nil, err
	}

	// Stok taslaklar için düşülmez; sipariş draft'tan çıkarken bir kez düşülür
	if o.Status != models.OrderStatusDraft {
		if err := deductItems(tx, &o); err != nil {
			return nil, err
		}
	}

	if o.TableID != nil {
		if err := occupyTable(tx, input.BranchID, *o.TableID); err != nil {
			return nil, err
		}
	}

	return &o, nil
}

// AddItem - Var olan siparişe kalem ekler ve toplamları yeniden hesaplar.
// Stok'a dokunmaz; düşüm siparişin kesinleşme anında bir kez yapılır.
func AddItem(tx *gorm.DB, orderID uint, input NewItemInput) (*models.Order, *models.OrderItem, error) {
	o, err := findByID(tx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !IsMutable(o.Status) {
		return nil, nil, apperr.New(409, apperr.CodeOrderNotMutable,
			fmt.Sprintf("Sipariş %s durumunda, kalem eklenemez", o.Status))
	}
	if input.ProductID == 0 || input.Quantity <= 0 {
		return nil, nil, apperr.BadRequest(apperr.CodeValidation, "product_id zorunlu, quantity 0'dan büyük olmalı")
	}

	var product models.Product
	if err := tx.First(&product, "id = ?", input.ProductID).Error; err != nil {
		return nil, nil, apperr.NotFound(fmt.Sprintf("Ürün bulunamadı (ID: %d)", input.ProductID))
	}
	if product.BranchID != o.BranchID {
		return nil, nil, apperr.BadRequest(apperr.CodeValidation,
			fmt.Sprintf("Ürün başka bir şubeye ait: %s", product.Name))
	}

	item := models.OrderItem{
		OrderID:   o.ID,
		ProductID: product.ID,
		Quantity:  input.Quantity,
		Price:     product.Price,
		Total:     ItemTotal(product.Price, input.Quantity),
	}
	if err := tx.Create(&item).Error; err != nil {
		return nil, nil, err
	}

	o.Items = append(o.Items, item)
	if err := recomputeTotals(tx, o); err != nil {
		return nil, nil, err
	}
	return o, &item, nil
}

type UpdateOrderInput struct {
	Discount     *float64
	DiscountType *models.DiscountType
	CreatedAt    *time.Time
}

// UpdateOrder - İndirim ve oluşturma zamanı için kısmi güncelleme
func UpdateOrder(tx *gorm.DB, orderID uint, input UpdateOrderInput) (*models.Order, error) {
	o, err := findByID(tx, orderID)
	if err != nil {
		return nil, err
	}
	if !IsMutable(o.Status) {
		return nil, apperr.New(409, apperr.CodeOrderNotMutable,
			fmt.Sprintf("Sipariş %s durumunda, güncellenemez", o.Status))
	}

	if input.Discount != nil {
		if *input.Discount < 0 {
			return nil, apperr.BadRequest(apperr.CodeValidation, "discount negatif olamaz")
		}
		o.Discount = *input.Discount
	}
	if input.DiscountType != nil {
		if *input.DiscountType != models.DiscountAmount && *input.DiscountType != models.DiscountPercentage {
			return nil, apperr.BadRequest(apperr.CodeValidation, "discount_type 'amount' veya 'percentage' olmalı")
		}
		o.DiscountType = *input.DiscountType
	}
	if input.CreatedAt != nil {
		o.CreatedAt = *input.CreatedAt
	}

	if err := recomputeTotals(tx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus - Durum makinesini uygular. pending → completed geçişi ödeme
// mutabakatını atlayamamak için yalnızca Checkout üzerinden yapılır; iptal,
// stok düşülmüşse düşümü geri alır ve masayı serbest bırakır.
func UpdateStatus(tx *gorm.DB, orderID uint, newStatus models.OrderStatus) (*models.Order, error) {
	o, err := findByID(tx, orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, newStatus) {
		return nil, apperr.New(409, apperr.CodeInvalidStatusTransition,
			fmt.Sprintf("Geçersiz durum geçişi: %s → %s", o.Status, newStatus))
	}
	if newStatus == models.OrderStatusCompleted {
		return nil, apperr.New(409, apperr.CodeInvalidStatusTransition,
			"Sipariş yalnızca checkout ile tamamlanabilir")
	}

	switch newStatus {
	case models.OrderStatusPending:
		// Kesinleşme anı: stok bir kez, burada düşülür
		if len(o.Items) == 0 {
			return nil, apperr.BadRequest(apperr.CodeValidation, "Kalemsiz sipariş kesinleştirilemez")
		}
		if err := deductItems(tx, o); err != nil {
			return nil, err
		}
	case models.OrderStatusCancelled:
		if o.Status == models.OrderStatusPending {
			// Stok düşülmüştü, geri al
			for _, it := range o.Items {
				if err := stock.Restock(tx, it.ProductID, it.Quantity,
					fmt.Sprintf("Sipariş iptali %s", o.OrderNumber)); err != nil {
					return nil, err
				}
			}
		}
		if o.TableID != nil {
			if err := freeTable(tx, *o.TableID); err != nil {
				return nil, err
			}
		}
	}

	o.Status = newStatus
	if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).
		Update("status", newStatus).Error; err != nil {
		return nil, err
	}
	return o, nil
}

type CheckoutInput struct {
	AmountPaid      *float64        // Tek ödeme
	PaymentMethod   string          // Tek ödeme yöntemi
	Splits          []payment.Split // Bölünmüş ödeme
	SplitByCustomer bool            // Her parçada müşteri ataması zorunlu mu
	CustomerID      *uint           // Veresiye kalırsa borcun sahibi
}

// Checkout - Ödeme mutabakatını çalıştırır ve siparişi tamamlar. Taslaklar için
// kesinleşme (stok düşümü) bu adımda yapılır. Veresiye kalan tutar siparişin
// due_amount alanına yazılır ve müşterinin toplam borcuna katılır.
func Checkout(tx *gorm.DB, orderID uint, input CheckoutInput) (*models.Order, error) {
	o, err := findByID(tx, orderID)
	if err != nil {
		return nil, err
	}
	if IsTerminal(o.Status) {
		return nil, apperr.New(409, apperr.CodeOrderNotMutable,
			fmt.Sprintf("Sipariş %s durumunda, ödeme alınamaz", o.Status))
	}
	if len(o.Items) == 0 {
		return nil, apperr.BadRequest(apperr.CodeValidation, "Kalemsiz sipariş tamamlanamaz")
	}

	// Taslak doğrudan checkout'a gelirse kesinleşme burada olur
	if o.Status == models.OrderStatusDraft {
		if err := deductItems(tx, o); err != nil {
			return nil, err
		}
	}

	var result payment.Result
	switch {
	case len(input.Splits) > 0:
		result, err = payment.ReconcileSplits(o.Total, input.Splits, input.SplitByCustomer)
		if err != nil {
			return nil, err
		}
		encoded, encErr := payment.EncodeSplits(input.Splits)
		if encErr != nil {
			return nil, apperr.BadRequest(apperr.CodeValidation, encErr.Error())
		}
		o.PaymentSplits = encoded
		o.PaymentMethod = "split"
	case input.AmountPaid != nil:
		if strings.TrimSpace(input.PaymentMethod) == "" {
			return nil, apperr.BadRequest(apperr.CodeValidation, "payment_method zorunlu")
		}
		result, err = payment.Reconcile(o.Total, *input.AmountPaid)
		if err != nil {
			return nil, err
		}
		o.PaymentMethod = strings.TrimSpace(input.PaymentMethod)
	default:
		return nil, apperr.BadRequest(apperr.CodeValidation, "amount_paid veya splits zorunlu")
	}

	if input.CustomerID != nil {
		o.CustomerID = input.CustomerID
	}

	o.PaidAmount = result.PaidAmount
	o.ChangeAmount = result.ChangeAmount
	o.DueAmount = result.DueAmount
	o.PaymentStatus = models.PaymentStatusPaid
	if result.DueAmount > 0 {
		// Veresiye satış müşterisiz takip edilemez
		if o.CustomerID == nil {
			return nil, apperr.BadRequest(apperr.CodeValidation,
				"Eksik ödemede customer_id zorunlu (veresiye müşteriye yazılır)")
		}
		o.PaymentStatus = models.PaymentStatusDue
	}

	now := time.Now()
	o.Status = models.OrderStatusCompleted
	o.CompletedAt = &now

	if err := tx.Save(o).Error; err != nil {
		return nil, err
	}

	if o.TableID != nil {
		if err := freeTable(tx, *o.TableID); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// -------------------------
// Yardımcılar
// -------------------------

func findByID(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var o models.Order
	if err := tx.Preload("Items").First(&o, "id = ?", orderID).Error; err != nil {
		return nil, apperr.NotFound("Sipariş bulunamadı")
	}
	return &o, nil
}

func recomputeTotals(tx *gorm.DB, o *models.Order) error {
	o.Subtotal = Subtotal(o.Items)
	o.Total = ComputeTotal(o.Subtotal, o.Discount, o.DiscountType)
	return tx.Save(o).Error
}

func deductItems(tx *gorm.DB, o *models.Order) error {
	for _, it := range o.Items {
		if err := stock.Deduct(tx, it.ProductID, it.Quantity,
			fmt.Sprintf("Sipariş %s", o.OrderNumber)); err != nil {
			return err
		}
	}
	return nil
}

func occupyTable(tx *gorm.DB, branchID, tableID uint) error {
	var table models.Table
	if err := tx.First(&table, "id = ?", tableID).Error; err != nil {
		return apperr.NotFound(fmt.Sprintf("Masa bulunamadı (ID: %d)", tableID))
	}
	if table.BranchID != branchID {
		return apperr.BadRequest(apperr.CodeValidation, "Masa başka bir şubeye ait")
	}
	return tx.Model(&models.Table{}).Where("id = ?", tableID).
		Update("status", models.TableOccupied).Error
}

func freeTable(tx *gorm.DB, tableID uint) error {
	return tx.Model(&models.Table{}).Where("id = ?", tableID).
		Update("status", models.TableAvailable).Error
}

// nextOrderNumber - İnsan okunur sipariş numarası: SP-YYYYMMDD-NNNN.
// Sıra, gün başına bir sayaç satırından üretilir; created_at sonradan geçmişe
// çekilebildiği için (toplu içe aktarma, sipariş düzenleme) sayım ya da tarih
// filtresi numara üretiminde kullanılmaz. Upsert satır kilidi aldığından
// eşzamanlı siparişler aynı numarayı alamaz.
func nextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	day := now.Format("20060102")

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"counter": gorm.Expr("counter + 1")}),
	}).Create(&models.OrderCounter{Day: day, Counter: 1}).Error; err != nil {
		return "", err
	}

	var counter models.OrderCounter
	if err := tx.First(&counter, "day = ?", day).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("SP-%s-%04d", day, counter.Counter), nil
}
