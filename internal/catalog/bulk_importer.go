package catalog

import (
	"fmt"
	"strings"

	"restoran-pos/internal/models"

	"gorm.io/gorm"
)

// Toplu ürün içe aktarma. Kasıtlı kısmi başarı sözleşmesi: her satır bağımsız
// doğrulanır ve uygulanır; başarısız satırlar uygulanmış olanları geri almaz,
// rapor satır numarası ve nedenle birlikte döner.

type ProductRow struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	CategoryID *uint   `json:"category_id"`
}

type ImportRowResult struct {
	Row       int    `json:"row"` // 1 tabanlı satır numarası
	Name      string `json:"name"`
	ProductID uint   `json:"product_id,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type ImportReport struct {
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
	Results  []ImportRowResult `json:"results"`
}

func importProductRow(db *gorm.DB, branchID uint, row ProductRow) (uint, error) {
	name := strings.TrimSpace(row.Name)
	if name == "" || strings.TrimSpace(row.Unit) == "" {
		return 0, fmt.Errorf("name ve unit zorunlu")
	}
	if row.Price < 0 || row.Quantity < 0 {
		return 0, fmt.Errorf("price ve quantity negatif olamaz")
	}

	var count int64
	db.Model(&models.Product{}).
		Where("branch_id = ? AND name = ?", branchID, name).
		Count(&count)
	if count > 0 {
		return 0, fmt.Errorf("aynı isimde ürün zaten var")
	}

	product := models.Product{
		BranchID:   branchID,
		CategoryID: row.CategoryID,
		Name:       name,
		Price:      row.Price,
		Quantity:   row.Quantity,
		Unit:       strings.TrimSpace(row.Unit),
	}
	if err := db.Create(&product).Error; err != nil {
		return 0, fmt.Errorf("veritabanı hatası: %v", err)
	}
	return product.ID, nil
}

// BulkImportProducts - Satır listesini tek tek uygulayıp rapor biriktirir.
// Tek bir satır hatası asla tüm içe aktarmayı durdurmaz.
func BulkImportProducts(db *gorm.DB, branchID uint, rows []ProductRow) ImportReport {
	report := ImportReport{Results: make([]ImportRowResult, 0, len(rows))}

	for i, row := range rows {
		productID, err := importProductRow(db, branchID, row)
		if err != nil {
			report.Failed++
			report.Results = append(report.Results, ImportRowResult{
				Row:     i + 1,
				Name:    strings.TrimSpace(row.Name),
				Success: false,
				Error:   err.Error(),
			})
			continue
		}
		report.Imported++
		report.Results = append(report.Results, ImportRowResult{
			Row:       i + 1,
			Name:      strings.TrimSpace(row.Name),
			ProductID: productID,
			Success:   true,
		})
	}

	return report
}
