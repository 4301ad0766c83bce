package order

import (
	"restoran-pos/internal/models"
	"restoran-pos/internal/payment"
)

// ItemTotal - Kalem tutarı: birim fiyat * miktar, 2 hane yuvarlanmış
func ItemTotal(price, quantity float64) float64 {
	return payment.Round2(price * quantity)
}

// Subtotal - Kalem tutarlarının toplamı
func Subtotal(items []models.OrderItem) float64 {
	sum := 0.0
	for _, it := range items {
		sum += it.Total
	}
	return payment.Round2(sum)
}

// EffectiveDiscount - İndirim tutarı. Yüzde tipinde subtotal üzerinden
// hesaplanır; her iki tipte de [0, subtotal] aralığına sıkıştırılır.
func EffectiveDiscount(subtotal, discount float64, discountType models.DiscountType) float64 {
	d := discount
	if discountType == models.DiscountPercentage {
		d = subtotal * discount / 100
	}
	if d < 0 {
		d = 0
	}
	if d > subtotal {
		d = subtotal
	}
	return payment.Round2(d)
}

// ComputeTotal - total == subtotal - efektif indirim
func ComputeTotal(subtotal, discount float64, discountType models.DiscountType) float64 {
	return payment.Round2(subtotal - EffectiveDiscount(subtotal, discount, discountType))
}
