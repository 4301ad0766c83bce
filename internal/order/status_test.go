package order

import (
	"testing"

	"restoran-pos/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{models.OrderStatusDraft, models.OrderStatusPending, true},
		{models.OrderStatusDraft, models.OrderStatusCancelled, true},
		{models.OrderStatusDraft, models.OrderStatusCompleted, false},
		{models.OrderStatusPending, models.OrderStatusCompleted, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusPending, models.OrderStatusDraft, false},
		{models.OrderStatusCompleted, models.OrderStatusCancelled, false},
		{models.OrderStatusCompleted, models.OrderStatusPending, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
		// Aynı duruma geçiş no-op değil, hatadır
		{models.OrderStatusPending, models.OrderStatusPending, false},
		{models.OrderStatusDraft, models.OrderStatusDraft, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, istenen %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(models.OrderStatusCompleted) || !IsTerminal(models.OrderStatusCancelled) {
		t.Error("completed ve cancelled terminal olmalı")
	}
	if IsTerminal(models.OrderStatusDraft) || IsTerminal(models.OrderStatusPending) {
		t.Error("draft ve pending terminal olmamalı")
	}
}

func TestValidInitialStatus(t *testing.T) {
	if !ValidInitialStatus(models.OrderStatusDraft) || !ValidInitialStatus(models.OrderStatusPending) {
		t.Error("draft ve pending geçerli başlangıç durumları olmalı")
	}
	if ValidInitialStatus(models.OrderStatusCompleted) || ValidInitialStatus(models.OrderStatusCancelled) {
		t.Error("completed ve cancelled başlangıç durumu olamaz")
	}
}
