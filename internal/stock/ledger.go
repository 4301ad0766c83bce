package stock

import (
	"fmt"

	"restoran-pos/internal/apperr"
	"restoran-pos/internal/models"

	"gorm.io/gorm"
)

// Bu paket Product.Quantity'nin tek yazarıdır. Her miktar değişikliği,
// append-only InventoryAdjustment satırı ile birlikte kaydedilir.

// Deduct - Satış kaynaklı stok düşümü. Koşullu tek UPDATE (quantity >= qty
// guard'ı) ile çalışır; aynı ürüne eşzamanlı düşümleri veritabanı serileştirir
// ve stok hiçbir zaman negatife inemez. Guard tutmazsa INSUFFICIENT_STOCK döner,
// çağıran üst transaction'ı iptal etmelidir.
func Deduct(tx *gorm.DB, productID uint, qty float64, reason string) error {
	if qty <= 0 {
		return apperr.BadRequest(apperr.CodeValidation, "Düşüm miktarı 0'dan büyük olmalı")
	}

	var product models.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		return apperr.NotFound(fmt.Sprintf("Ürün bulunamadı (ID: %d)", productID))
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.New(409, apperr.CodeInsufficientStock,
			fmt.Sprintf("Stok yetersiz: %s (mevcut %.2f, istenen %.2f)", product.Name, product.Quantity, qty))
	}

	adj := models.InventoryAdjustment{
		BranchID:       product.BranchID,
		ProductID:      product.ID,
		AdjustmentType: models.AdjustmentSale,
		Quantity:       qty,
		Reason:         reason,
	}
	return tx.Create(&adj).Error
}

// Restock - Stok düşülmüş bir sipariş iptal edildiğinde düşümü geri alır
func Restock(tx *gorm.DB, productID uint, qty float64, reason string) error {
	if qty <= 0 {
		return apperr.BadRequest(apperr.CodeValidation, "İade miktarı 0'dan büyük olmalı")
	}

	var product models.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		return apperr.NotFound(fmt.Sprintf("Ürün bulunamadı (ID: %d)", productID))
	}

	res := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}

	adj := models.InventoryAdjustment{
		BranchID:       product.BranchID,
		ProductID:      product.ID,
		AdjustmentType: models.AdjustmentAdd,
		Quantity:       qty,
		Reason:         reason,
	}
	return tx.Create(&adj).Error
}

// Adjust - Manuel stok düzeltmesi. "remove" 0'da kırpılır, asla negatife inmez;
// "set" mutlak miktarı atar. Sayısal değişiklik sıfır olsa bile izlenebilirlik
// için hareket satırı yazılır.
func Adjust(tx *gorm.DB, productID uint, adjType models.AdjustmentType, qty float64, reason, notes string) (*models.InventoryAdjustment, error) {
	var product models.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		return nil, apperr.NotFound(fmt.Sprintf("Ürün bulunamadı (ID: %d)", productID))
	}

	var newQuantity float64
	switch adjType {
	case models.AdjustmentAdd:
		if qty <= 0 {
			return nil, apperr.BadRequest(apperr.CodeValidation, "add için quantity 0'dan büyük olmalı")
		}
		newQuantity = product.Quantity + qty
	case models.AdjustmentRemove:
		if qty <= 0 {
			return nil, apperr.BadRequest(apperr.CodeValidation, "remove için quantity 0'dan büyük olmalı")
		}
		newQuantity = product.Quantity - qty
		if newQuantity < 0 {
			newQuantity = 0
		}
	case models.AdjustmentSet:
		if qty < 0 {
			return nil, apperr.BadRequest(apperr.CodeValidation, "set için quantity negatif olamaz")
		}
		newQuantity = qty
	default:
		return nil, apperr.BadRequest(apperr.CodeValidation, "adjustment_type 'add', 'remove' veya 'set' olmalı")
	}

	if err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("quantity", newQuantity).Error; err != nil {
		return nil, err
	}

	adj := models.InventoryAdjustment{
		BranchID:       product.BranchID,
		ProductID:      product.ID,
		AdjustmentType: adjType,
		Quantity:       qty,
		Reason:         reason,
		Notes:          notes,
	}
	if err := tx.Create(&adj).Error; err != nil {
		return nil, err
	}
	return &adj, nil
}

// LowStock - Miktarı eşiğin altında veya eşiğe eşit ürünler. Salt okunur.
func LowStock(db *gorm.DB, branchID uint, threshold float64) ([]models.Product, error) {
	var products []models.Product
	err := db.Where("branch_id = ? AND quantity <= ?", branchID, threshold).
		Order("quantity asc, name asc").
		Find(&products).Error
	return products, err
}
