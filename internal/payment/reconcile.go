package payment

import (
	"fmt"
	"math"

	"restoran-pos/internal/apperr"
)

// Result - Mutabakat sonucu. Hiçbir şey kalıcılaştırmaz; checkout akışı
// sonucu siparişe yazar.
type Result struct {
	PaidAmount   float64
	ChangeAmount float64
	DueAmount    float64
}

// Round2 - Para tutarlarını 2 ondalık haneye yuvarlar
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Reconcile - Tek ödeme mutabakatı. Eksik ödeme siparişi engellemez:
// satış hemen tanınır, eksik kalan tutar veresiye olarak takip edilir.
func Reconcile(total, amountPaid float64) (Result, error) {
	if amountPaid < 0 {
		return Result{}, apperr.BadRequest(apperr.CodeValidation, "amount_paid negatif olamaz")
	}

	r := Result{PaidAmount: Round2(amountPaid)}
	if amountPaid >= total {
		r.ChangeAmount = Round2(amountPaid - total)
	} else {
		r.DueAmount = Round2(total - amountPaid)
	}
	return r, nil
}

// ReconcileSplits - Bölünmüş ödeme mutabakatı. Parçalar toplamı tutarı
// karşılamak zorundadır; eksik kapsama tek ödemedeki gibi veresiyeye dönmez.
// byCustomer true ise her parçada müşteri ataması aranır.
func ReconcileSplits(total float64, splits []Split, byCustomer bool) (Result, error) {
	if err := validateSplits(splits); err != nil {
		return Result{}, apperr.BadRequest(apperr.CodeValidation, err.Error())
	}

	totalPaid := 0.0
	for _, s := range splits {
		totalPaid += s.Amount
	}
	totalPaid = Round2(totalPaid)

	if totalPaid < total {
		return Result{}, apperr.BadRequest(apperr.CodeIncompleteSplitPayment,
			fmt.Sprintf("Bölünmüş ödeme toplamı (%.2f) sipariş tutarını (%.2f) karşılamıyor", totalPaid, total))
	}

	if byCustomer {
		for i, s := range splits {
			if !s.HasCustomer() {
				return Result{}, apperr.BadRequest(apperr.CodeMissingCustomerAttribution,
					fmt.Sprintf("Müşteri bazlı bölünmüş ödemede parça %d için müşteri bilgisi eksik", i+1))
			}
		}
	}

	return Result{
		PaidAmount:   totalPaid,
		ChangeAmount: Round2(totalPaid - total),
	}, nil
}
