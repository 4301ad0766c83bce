package order

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/database"
	"restoran-pos/internal/models"
	"restoran-pos/internal/payment"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}
	// Her bağlantı ayrı bir :memory: veritabanı açar, havuzu teke indir
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("bağlantı havuzu alınamadı: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate hatası: %v", err)
	}
	return db
}

type fixture struct {
	branch   models.Branch
	table    models.Table
	customer models.Customer
	cay      models.Product // 5 TL, stok 100
	kofte    models.Product // 40 TL, stok 10
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{}

	f.branch = models.Branch{Name: "Merkez"}
	if err := db.Create(&f.branch).Error; err != nil {
		t.Fatalf("şube oluşturulamadı: %v", err)
	}
	f.table = models.Table{BranchID: f.branch.ID, Name: "M1", Status: models.TableAvailable}
	if err := db.Create(&f.table).Error; err != nil {
		t.Fatalf("masa oluşturulamadı: %v", err)
	}
	f.customer = models.Customer{BranchID: &f.branch.ID, Name: "Ahmet", Phone: "05551112233"}
	if err := db.Create(&f.customer).Error; err != nil {
		t.Fatalf("müşteri oluşturulamadı: %v", err)
	}
	f.cay = models.Product{BranchID: f.branch.ID, Name: "Çay", Price: 5, Quantity: 100, Unit: "adet"}
	if err := db.Create(&f.cay).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	f.kofte = models.Product{BranchID: f.branch.ID, Name: "Köfte", Price: 40, Quantity: 10, Unit: "porsiyon"}
	if err := db.Create(&f.kofte).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	return f
}

func productQty(t *testing.T, db *gorm.DB, id uint) float64 {
	t.Helper()
	var p models.Product
	if err := db.First(&p, id).Error; err != nil {
		t.Fatalf("ürün okunamadı: %v", err)
	}
	return p.Quantity
}

func tableStatus(t *testing.T, db *gorm.DB, id uint) models.TableStatus {
	t.Helper()
	var tbl models.Table
	if err := db.First(&tbl, id).Error; err != nil {
		t.Fatalf("masa okunamadı: %v", err)
	}
	return tbl.Status
}

func TestCreateOrder(t *testing.T) {
	t.Run("pending sipariş toplamları hesaplar, stok düşer, masayı doldurur", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			TableID:  &f.table.ID,
			Status:   models.OrderStatusPending,
			Items: []NewItemInput{
				{ProductID: f.cay.ID, Quantity: 2},
				{ProductID: f.kofte.ID, Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}

		if o.Subtotal != 50 || o.Total != 50 {
			t.Errorf("subtotal=%v total=%v, istenen 50/50", o.Subtotal, o.Total)
		}
		wantNumber := fmt.Sprintf("SP-%s-0001", time.Now().Format("20060102"))
		if o.OrderNumber != wantNumber {
			t.Errorf("order_number = %s, istenen %s", o.OrderNumber, wantNumber)
		}
		if got := productQty(t, db, f.cay.ID); got != 98 {
			t.Errorf("çay stoku = %v, istenen 98", got)
		}
		if got := productQty(t, db, f.kofte.ID); got != 9 {
			t.Errorf("köfte stoku = %v, istenen 9", got)
		}
		if got := tableStatus(t, db, f.table.ID); got != models.TableOccupied {
			t.Errorf("masa durumu = %s, istenen occupied", got)
		}
	})

	t.Run("geçmişe tarihlenen sipariş numara sırasını bozmaz", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		newOrder := func() (*models.Order, error) {
			return CreateOrder(db, CreateOrderInput{
				BranchID: f.branch.ID,
				Status:   models.OrderStatusPending,
				Items:    []NewItemInput{{ProductID: f.cay.ID, Quantity: 1}},
			})
		}
		backdate := func(o *models.Order, d time.Time) {
			// Toplu içe aktarma geçmiş satışları oluşturduktan sonra böyle tarihler
			if err := db.Model(&models.Order{}).Where("id = ?", o.ID).
				Update("created_at", d).Error; err != nil {
				t.Fatalf("created_at güncellenemedi: %v", err)
			}
		}

		day := time.Now().Format("20060102")
		past := time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC)

		o1, err := newOrder()
		if err != nil {
			t.Fatalf("ilk sipariş oluşturulamadı: %v", err)
		}
		backdate(o1, past)

		o2, err := newOrder()
		if err != nil {
			t.Fatalf("geriye tarihleme sonrası sipariş oluşturulamadı: %v", err)
		}
		if want := fmt.Sprintf("SP-%s-0002", day); o2.OrderNumber != want {
			t.Errorf("order_number = %s, istenen %s", o2.OrderNumber, want)
		}

		// Birden fazla geçmiş satır art arda içe aktarılsa da sıra ilerler
		backdate(o2, past.AddDate(0, 0, 1))
		o3, err := newOrder()
		if err != nil {
			t.Fatalf("üçüncü sipariş oluşturulamadı: %v", err)
		}
		if want := fmt.Sprintf("SP-%s-0003", day); o3.OrderNumber != want {
			t.Errorf("order_number = %s, istenen %s", o3.OrderNumber, want)
		}
	})

	t.Run("draft sipariş stok düşmez", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		_, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusDraft,
			Items:    []NewItemInput{{ProductID: f.cay.ID, Quantity: 5}},
		})
		if err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
		if got := productQty(t, db, f.cay.ID); got != 100 {
			t.Errorf("draft sonrası çay stoku = %v, istenen 100", got)
		}
	})

	t.Run("boş draft kabul, boş pending red", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		if _, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusDraft,
		}); err != nil {
			t.Errorf("boş draft reddedilmemeli: %v", err)
		}
		if _, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusPending,
		}); err == nil {
			t.Error("boş pending reddedilmeli")
		}
	})

	t.Run("yüzde indirim toplamı düşürür", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID:     f.branch.ID,
			Status:       models.OrderStatusPending,
			Discount:     10,
			DiscountType: models.DiscountPercentage,
			Items:        []NewItemInput{{ProductID: f.kofte.ID, Quantity: 2}},
		})
		if err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
		if o.Subtotal != 80 || o.Total != 72 {
			t.Errorf("subtotal=%v total=%v, istenen 80/72", o.Subtotal, o.Total)
		}
	})

	t.Run("stok yetersizse tüm sipariş geri alınır", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := CreateOrder(tx, CreateOrderInput{
				BranchID: f.branch.ID,
				Status:   models.OrderStatusPending,
				Items: []NewItemInput{
					{ProductID: f.cay.ID, Quantity: 2},
					{ProductID: f.kofte.ID, Quantity: 11}, // stok 10
				},
			})
			return err
		})

		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Code != apperr.CodeInsufficientStock {
			t.Fatalf("INSUFFICIENT_STOCK bekleniyordu, alınan: %v", err)
		}

		var orderCount int64
		db.Model(&models.Order{}).Count(&orderCount)
		if orderCount != 0 {
			t.Errorf("sipariş kalıcılaşmamalıydı: %d satır var", orderCount)
		}
		if got := productQty(t, db, f.cay.ID); got != 100 {
			t.Errorf("çay stoku geri alınmadı: %v", got)
		}
	})

	t.Run("başka şubenin ürünü reddedilir", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		other := models.Branch{Name: "Şube 2"}
		if err := db.Create(&other).Error; err != nil {
			t.Fatalf("şube oluşturulamadı: %v", err)
		}

		_, err := CreateOrder(db, CreateOrderInput{
			BranchID: other.ID,
			Status:   models.OrderStatusPending,
			Items:    []NewItemInput{{ProductID: f.cay.ID, Quantity: 1}},
		})
		if err == nil {
			t.Fatal("şube uyuşmazlığı reddedilmeliydi")
		}
	})
}

func TestAddItem(t *testing.T) {
	t.Run("kalem ekler ve toplamları günceller", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusPending,
			Items:    []NewItemInput{{ProductID: f.cay.ID, Quantity: 2}},
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}

		updated, item, err := AddItem(db, o.ID, NewItemInput{ProductID: f.kofte.ID, Quantity: 1})
		if err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
		if item.Price != 40 || item.Total != 40 {
			t.Errorf("kalem fiyat anlık görüntüsü hatalı: %+v", item)
		}
		if updated.Subtotal != 50 || updated.Total != 50 {
			t.Errorf("toplamlar güncellenmedi: subtotal=%v total=%v", updated.Subtotal, updated.Total)
		}
		// AddItem stok düşmez; düşüm kesinleşme anında yapılmıştı
		if got := productQty(t, db, f.kofte.ID); got != 10 {
			t.Errorf("köfte stoku = %v, istenen 10", got)
		}
	})

	t.Run("terminal siparişe kalem eklenemez", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusPending,
			Items:    []NewItemInput{{ProductID: f.cay.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}
		paid := 5.0
		if _, err := Checkout(db, o.ID, CheckoutInput{AmountPaid: &paid, PaymentMethod: "cash"}); err != nil {
			t.Fatalf("checkout hatası: %v", err)
		}

		_, _, err = AddItem(db, o.ID, NewItemInput{ProductID: f.kofte.ID, Quantity: 1})
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Code != apperr.CodeOrderNotMutable {
			t.Fatalf("ORDER_NOT_MUTABLE bekleniyordu, alınan: %v", err)
		}
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("draft kesinleşince stok düşer", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusDraft,
			Items:    []NewItemInput{{ProductID: f.cay.ID, Quantity: 3}},
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}
		if got := productQty(t, db, f.cay.ID); got != 100 {
			t.Fatalf("draft aşamasında stok düşmemeliydi: %v", got)
		}

		if _, err := UpdateStatus(db, o.ID, models.OrderStatusPending); err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
		if got := productQty(t, db, f.cay.ID); got != 97 {
			t.Errorf("kesinleşme sonrası çay stoku = %v, istenen 97", got)
		}
	})

	t.Run("pending iptali stoku geri alır ve masayı boşaltır", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			TableID:  &f.table.ID,
			Status:   models.OrderStatusPending,
			Items:    []NewItemInput{{ProductID: f.kofte.ID, Quantity: 4}},
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}
		if got := productQty(t, db, f.kofte.ID); got != 6 {
			t.Fatalf("kesinleşme sonrası köfte stoku = %v, istenen 6", got)
		}

		if _, err := UpdateStatus(db, o.ID, models.OrderStatusCancelled); err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
		if got := productQty(t, db, f.kofte.ID); got != 10 {
			t.Errorf("iptal sonrası köfte stoku = %v, istenen 10", got)
		}
		if got := tableStatus(t, db, f.table.ID); got != models.TableAvailable {
			t.Errorf("masa durumu = %s, istenen available", got)
		}
	})

	t.Run("draft iptali stok geri almaz", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusDraft,
			Items:    []NewItemInput{{ProductID: f.cay.ID, Quantity: 3}},
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}
		if _, err := UpdateStatus(db, o.ID, models.OrderStatusCancelled); err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
		if got := productQty(t, db, f.cay.ID); got != 100 {
			t.Errorf("draft iptali sonrası stok = %v, istenen 100", got)
		}
	})

	t.Run("completed durumuna doğrudan geçilemez", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusPending,
			Items:    []NewItemInput{{ProductID: f.cay.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}

		_, err = UpdateStatus(db, o.ID, models.OrderStatusCompleted)
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Code != apperr.CodeInvalidStatusTransition {
			t.Fatalf("INVALID_STATUS_TRANSITION bekleniyordu, alınan: %v", err)
		}
	})
}

func TestCheckout(t *testing.T) {
	t.Run("tam ödeme siparişi tamamlar, masayı boşaltır", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			TableID:  &f.table.ID,
			Status:   models.OrderStatusPending,
			Items:    []NewItemInput{{ProductID: f.kofte.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}

		paid := 50.0
		got, err := Checkout(db, o.ID, CheckoutInput{AmountPaid: &paid, PaymentMethod: "cash"})
		if err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
		if got.Status != models.OrderStatusCompleted || got.CompletedAt == nil {
			t.Errorf("sipariş tamamlanmadı: %+v", got.Status)
		}
		if got.PaidAmount != 50 || got.ChangeAmount != 10 || got.DueAmount != 0 {
			t.Errorf("mutabakat hatalı: paid=%v change=%v due=%v", got.PaidAmount, got.ChangeAmount, got.DueAmount)
		}
		if got.PaymentStatus != models.PaymentStatusPaid {
			t.Errorf("payment_status = %s, istenen paid", got.PaymentStatus)
		}
		if got := tableStatus(t, db, f.table.ID); got != models.TableAvailable {
			t.Errorf("masa durumu = %s, istenen available", got)
		}
	})

	t.Run("eksik ödeme müşterili siparişte veresiyeye düşer", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID:   f.branch.ID,
			CustomerID: &f.customer.ID,
			Status:     models.OrderStatusPending,
			Items:      []NewItemInput{{ProductID: f.kofte.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}

		paid := 25.0
		got, err := Checkout(db, o.ID, CheckoutInput{AmountPaid: &paid, PaymentMethod: "cash"})
		if err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
		if got.DueAmount != 15 || got.PaymentStatus != models.PaymentStatusDue {
			t.Errorf("due=%v status=%s, istenen 15/due", got.DueAmount, got.PaymentStatus)
		}
		if got.Status != models.OrderStatusCompleted {
			t.Errorf("eksik ödeme tamamlanmayı engellememeli: %s", got.Status)
		}
	})

	t.Run("eksik ödeme müşterisiz reddedilir", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusPending,
			Items:    []NewItemInput{{ProductID: f.kofte.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}

		paid := 25.0
		if _, err := Checkout(db, o.ID, CheckoutInput{AmountPaid: &paid, PaymentMethod: "cash"}); err == nil {
			t.Fatal("müşterisiz veresiye reddedilmeliydi")
		}
	})

	t.Run("bölünmüş ödeme parçaları kaydedilir", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusPending,
			Items:    []NewItemInput{{ProductID: f.cay.ID, Quantity: 5}}, // 25
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}

		got, err := Checkout(db, o.ID, CheckoutInput{
			Splits: []payment.Split{
				{Method: "cash", Amount: 15},
				{Method: "card", Amount: 12},
			},
		})
		if err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
		if got.PaidAmount != 27 || got.ChangeAmount != 2 {
			t.Errorf("paid=%v change=%v, istenen 27/2", got.PaidAmount, got.ChangeAmount)
		}
		if got.PaymentMethod != "split" {
			t.Errorf("payment_method = %s, istenen split", got.PaymentMethod)
		}

		splits, err := payment.DecodeSplits(got.PaymentSplits)
		if err != nil || len(splits) != 2 {
			t.Errorf("parçalar geri okunamadı: %v, %v", splits, err)
		}
	})

	t.Run("draft doğrudan checkout'ta kesinleşir ve stok düşer", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusDraft,
			Items:    []NewItemInput{{ProductID: f.cay.ID, Quantity: 4}},
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}

		paid := 20.0
		if _, err := Checkout(db, o.ID, CheckoutInput{AmountPaid: &paid, PaymentMethod: "cash"}); err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
		if got := productQty(t, db, f.cay.ID); got != 96 {
			t.Errorf("çay stoku = %v, istenen 96", got)
		}
	})

	t.Run("tamamlanmış sipariş ikinci kez ödenemez", func(t *testing.T) {
		db := newTestDB(t)
		f := seed(t, db)

		o, err := CreateOrder(db, CreateOrderInput{
			BranchID: f.branch.ID,
			Status:   models.OrderStatusPending,
			Items:    []NewItemInput{{ProductID: f.cay.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("sipariş oluşturulamadı: %v", err)
		}
		paid := 5.0
		if _, err := Checkout(db, o.ID, CheckoutInput{AmountPaid: &paid, PaymentMethod: "cash"}); err != nil {
			t.Fatalf("ilk checkout hatası: %v", err)
		}

		_, err = Checkout(db, o.ID, CheckoutInput{AmountPaid: &paid, PaymentMethod: "cash"})
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Code != apperr.CodeOrderNotMutable {
			t.Fatalf("ORDER_NOT_MUTABLE bekleniyordu, alınan: %v", err)
		}
	})
}
