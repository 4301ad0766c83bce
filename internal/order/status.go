package order

import "restoran-pos/internal/models"

// Durum makinesi: draft → pending → completed; draft → cancelled;
// pending → cancelled. completed ve cancelled terminaldir. Aynı duruma
// geçiş (no-op) de reddedilir.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusDraft:   {models.OrderStatusPending, models.OrderStatusCancelled},
	models.OrderStatusPending: {models.OrderStatusCompleted, models.OrderStatusCancelled},
}

// CanTransition - from durumundan to durumuna geçiş izinli mi
func CanTransition(from, to models.OrderStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IsTerminal - completed ve cancelled sonrası hiçbir geçiş yoktur
func IsTerminal(s models.OrderStatus) bool {
	return s == models.OrderStatusCompleted || s == models.OrderStatusCancelled
}

// IsMutable - Kalem eklenebilir / güncellenebilir mi
func IsMutable(s models.OrderStatus) bool {
	return !IsTerminal(s)
}

// ValidStatus - Sipariş oluşturulurken kabul edilen başlangıç durumları
func ValidInitialStatus(s models.OrderStatus) bool {
	return s == models.OrderStatusDraft || s == models.OrderStatusPending
}
