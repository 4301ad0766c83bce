package stock

import (
	"errors"
	"testing"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

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

func seedProduct(t *testing.T, db *gorm.DB, qty float64) *models.Product {
	t.Helper()
	branch := models.Branch{Name: "Merkez"}
	if err := db.Create(&branch).Error; err != nil {
		t.Fatalf("şube oluşturulamadı: %v", err)
	}
	p := models.Product{BranchID: branch.ID, Name: "Çay", Price: 5, Quantity: qty, Unit: "adet"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	return &p
}

func adjustmentCount(t *testing.T, db *gorm.DB, productID uint) int64 {
	t.Helper()
	var n int64
	db.Model(&models.InventoryAdjustment{}).Where("product_id = ?", productID).Count(&n)
	return n
}

func reloadQuantity(t *testing.T, db *gorm.DB, productID uint) float64 {
	t.Helper()
	var p models.Product
	if err := db.First(&p, productID).Error; err != nil {
		t.Fatalf("ürün okunamadı: %v", err)
	}
	return p.Quantity
}

func TestDeduct(t *testing.T) {
	t.Run("yeterli stokta düşer ve hareket yazar", func(t *testing.T) {
		db := newTestDB(t)
		p := seedProduct(t, db, 10)

		if err := Deduct(db, p.ID, 6, "Sipariş SP-20260901-0001"); err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
		if got := reloadQuantity(t, db, p.ID); got != 4 {
			t.Errorf("quantity = %v, istenen 4", got)
		}

		var adj models.InventoryAdjustment
		if err := db.First(&adj, "product_id = ?", p.ID).Error; err != nil {
			t.Fatalf("hareket satırı bulunamadı: %v", err)
		}
		if adj.AdjustmentType != models.AdjustmentSale || adj.Quantity != 6 {
			t.Errorf("hareket = %+v, istenen sale/6", adj)
		}
	})

	t.Run("yetersiz stok INSUFFICIENT_STOCK döner, stok değişmez", func(t *testing.T) {
		db := newTestDB(t)
		p := seedProduct(t, db, 10)

		if err := Deduct(db, p.ID, 6, "ilk satış"); err != nil {
			t.Fatalf("ilk düşüm başarısız: %v", err)
		}
		err := Deduct(db, p.ID, 6, "ikinci satış")
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Code != apperr.CodeInsufficientStock {
			t.Fatalf("INSUFFICIENT_STOCK bekleniyordu, alınan: %v", err)
		}
		if got := reloadQuantity(t, db, p.ID); got != 4 {
			t.Errorf("başarısız düşüm sonrası quantity = %v, istenen 4", got)
		}
		if n := adjustmentCount(t, db, p.ID); n != 1 {
			t.Errorf("başarısız düşüm hareket yazmamalı: %d satır var", n)
		}
	})

	t.Run("eşzamanlı düşümlerin yalnızca biri başarılı olur", func(t *testing.T) {
		db := newTestDB(t)
		p := seedProduct(t, db, 10)

		// İki goroutine aynı anda 6 düşmeye çalışır. Koşullu UPDATE tek ifade
		// olduğundan hangi sırayla çalışırlarsa çalışsınlar en fazla biri geçer.
		errs := make(chan error, 2)
		for i := 0; i < 2; i++ {
			go func() {
				errs <- Deduct(db, p.ID, 6, "eşzamanlı satış")
			}()
		}

		var failed int
		for i := 0; i < 2; i++ {
			if err := <-errs; err != nil {
				var appErr *apperr.Error
				if !errors.As(err, &appErr) || appErr.Code != apperr.CodeInsufficientStock {
					t.Fatalf("INSUFFICIENT_STOCK bekleniyordu, alınan: %v", err)
				}
				failed++
			}
		}
		if failed != 1 {
			t.Fatalf("iki düşümden tam olarak biri başarısız olmalıydı, %d başarısız", failed)
		}
		if got := reloadQuantity(t, db, p.ID); got != 4 {
			t.Errorf("son quantity = %v, istenen 4", got)
		}
		if n := adjustmentCount(t, db, p.ID); n != 1 {
			t.Errorf("tek hareket satırı bekleniyordu: %d satır var", n)
		}
	})

	t.Run("olmayan ürün NOT_FOUND", func(t *testing.T) {
		db := newTestDB(t)
		err := Deduct(db, 999, 1, "satış")
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Code != apperr.CodeNotFound {
			t.Fatalf("NOT_FOUND bekleniyordu, alınan: %v", err)
		}
	})

	t.Run("sıfır miktar reddedilir", func(t *testing.T) {
		db := newTestDB(t)
		p := seedProduct(t, db, 10)
		if err := Deduct(db, p.ID, 0, "satış"); err == nil {
			t.Fatal("hata bekleniyordu")
		}
	})
}

func TestRestock(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 4)

	if err := Restock(db, p.ID, 6, "Sipariş iptali SP-20260901-0002"); err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}
	if got := reloadQuantity(t, db, p.ID); got != 10 {
		t.Errorf("quantity = %v, istenen 10", got)
	}

	var adj models.InventoryAdjustment
	if err := db.First(&adj, "product_id = ?", p.ID).Error; err != nil {
		t.Fatalf("hareket satırı bulunamadı: %v", err)
	}
	if adj.AdjustmentType != models.AdjustmentAdd || adj.Quantity != 6 {
		t.Errorf("hareket = %+v, istenen add/6", adj)
	}
}

func TestAdjust(t *testing.T) {
	tests := []struct {
		name    string
		start   float64
		adjType models.AdjustmentType
		qty     float64
		want    float64
		wantErr bool
	}{
		{name: "add artırır", start: 10, adjType: models.AdjustmentAdd, qty: 5, want: 15},
		{name: "remove azaltır", start: 10, adjType: models.AdjustmentRemove, qty: 3, want: 7},
		{name: "remove sıfırda kırpılır", start: 2, adjType: models.AdjustmentRemove, qty: 5, want: 0},
		{name: "set mutlak atar", start: 10, adjType: models.AdjustmentSet, qty: 42, want: 42},
		{name: "set sıfır geçerli", start: 10, adjType: models.AdjustmentSet, qty: 0, want: 0},
		{name: "add sıfır reddedilir", start: 10, adjType: models.AdjustmentAdd, qty: 0, wantErr: true},
		{name: "set negatif reddedilir", start: 10, adjType: models.AdjustmentSet, qty: -1, wantErr: true},
		{name: "bilinmeyen tip reddedilir", start: 10, adjType: "typo", qty: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			p := seedProduct(t, db, tt.start)

			adj, err := Adjust(db, p.ID, tt.adjType, tt.qty, "sayım", "")
			if tt.wantErr {
				if err == nil {
					t.Fatal("hata bekleniyordu")
				}
				if n := adjustmentCount(t, db, p.ID); n != 0 {
					t.Errorf("başarısız düzeltme hareket yazmamalı: %d satır var", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("beklenmeyen hata: %v", err)
			}
			if got := reloadQuantity(t, db, p.ID); got != tt.want {
				t.Errorf("quantity = %v, istenen %v", got, tt.want)
			}
			// Sayısal değişiklik olmasa bile hareket satırı yazılır
			if adj == nil || adj.ID == 0 {
				t.Error("hareket satırı yazılmadı")
			}
		})
	}
}

func TestLowStock(t *testing.T) {
	db := newTestDB(t)
	branch := models.Branch{Name: "Merkez"}
	if err := db.Create(&branch).Error; err != nil {
		t.Fatalf("şube oluşturulamadı: %v", err)
	}

	products := []models.Product{
		{BranchID: branch.ID, Name: "Çay", Price: 5, Quantity: 2, Unit: "adet"},
		{BranchID: branch.ID, Name: "Kahve", Price: 15, Quantity: 10, Unit: "adet"},
		{BranchID: branch.ID, Name: "Su", Price: 3, Quantity: 5, Unit: "adet"},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("ürün oluşturulamadı: %v", err)
		}
	}

	got, err := LowStock(db, branch.ID, 5)
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("2 ürün bekleniyordu, %d alındı", len(got))
	}
	// quantity asc sıralı
	if got[0].Name != "Çay" || got[1].Name != "Su" {
		t.Errorf("sıralama hatalı: %s, %s", got[0].Name, got[1].Name)
	}
}
