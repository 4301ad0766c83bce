package payment

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Split - Bölünmüş ödemenin tek parçası. Sipariş üzerinde JSON olarak saklanır;
// müşteri alanları "bu parça şu müşterinin payı" anlamına gelir.
type Split struct {
	Method        string  `json:"method"`
	Amount        float64 `json:"amount"`
	CustomerID    *uint   `json:"customer_id,omitempty"`
	CustomerName  string  `json:"customer_name,omitempty"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
}

// HasCustomer - Parçada müşteri ataması var mı
func (s Split) HasCustomer() bool {
	return s.CustomerID != nil || strings.TrimSpace(s.CustomerName) != ""
}

func validateSplits(splits []Split) error {
	if len(splits) == 0 {
		return fmt.Errorf("en az bir ödeme parçası gerekli")
	}
	for i, s := range splits {
		if strings.TrimSpace(s.Method) == "" {
			return fmt.Errorf("parça %d: method zorunlu", i+1)
		}
		if s.Amount <= 0 {
			return fmt.Errorf("parça %d: amount 0'dan büyük olmalı", i+1)
		}
	}
	return nil
}

// EncodeSplits - Parça listesini sipariş kolonunda saklanacak JSON'a çevirir.
// Serbest biçimli blob değil: yazmadan önce şema doğrulanır.
func EncodeSplits(splits []Split) (string, error) {
	if err := validateSplits(splits); err != nil {
		return "", err
	}
	b, err := json.Marshal(splits)
	if err != nil {
		return "", fmt.Errorf("ödeme parçaları serileştirilemedi: %w", err)
	}
	return string(b), nil
}

// DecodeSplits - Sipariş kolonundaki JSON'u sıralı parça listesine çevirir
func DecodeSplits(raw string) ([]Split, error) {
	if strings.TrimSpace(raw) == "" || raw == "null" {
		return nil, nil
	}
	var splits []Split
	if err := json.Unmarshal([]byte(raw), &splits); err != nil {
		return nil, fmt.Errorf("ödeme parçaları çözümlenemedi: %w", err)
	}
	if err := validateSplits(splits); err != nil {
		return nil, err
	}
	return splits, nil
}
