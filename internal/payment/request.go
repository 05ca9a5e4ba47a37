// Package payment реализует имитацию оплаты: проверку платёжной формы и создание
// записи о платеже на бэкенде. Реальные списания не выполняются.
package payment

import (
	"strconv"
	"strings"

	"github.com/mmeshcher/restaurant-orders/internal/validation"
)

// Платёжные шлюзы, которые принимает бэкенд.
const (
	GatewayStripe     = "Stripe"
	GatewayPayPal     = "PayPal"
	GatewayCreditCard = "Credit Card"
)

// Request описывает платёжную форму.
type Request struct {
	Gateway        string  `json:"gateway"`
	Amount         float64 `json:"amount"`
	Status         string  `json:"status,omitempty"`
	CardholderName string  `json:"cardholder_name,omitempty"`
	CardNumber     string  `json:"card_number,omitempty"`
	ExpiryMonth    string  `json:"card_expiry_month,omitempty"`
	ExpiryYear     string  `json:"card_expiry_year,omitempty"`
	CVC            string  `json:"card_cvc,omitempty"`
	PostalCode     string  `json:"postal_code,omitempty"`
}

// Validate возвращает список ошибок формы; пустой список означает, что форма корректна.
func (r Request) Validate() []string {
	var errs []string

	switch r.Gateway {
	case GatewayStripe, GatewayPayPal, GatewayCreditCard:
	default:
		errs = append(errs, "Invalid payment gateway: "+r.Gateway)
	}
	if r.Amount <= 0 {
		errs = append(errs, "Amount must be greater than 0")
	}
	if r.Gateway != GatewayCreditCard {
		return errs
	}

	if strings.TrimSpace(r.CardholderName) == "" {
		errs = append(errs, "Cardholder name is required")
	}
	if !validation.IsValidCardNumber(r.CardNumber) {
		errs = append(errs, "Invalid card number")
	}
	if !validMonth(r.ExpiryMonth) {
		errs = append(errs, "Expiry month must be between 01 and 12")
	}
	if !validation.IsDigits(r.ExpiryYear, 2, 2) && !validation.IsDigits(r.ExpiryYear, 4, 4) {
		errs = append(errs, "Invalid expiry year")
	}
	if !validation.IsDigits(r.CVC, 3, 4) {
		errs = append(errs, "CVC must be 3 or 4 digits")
	}
	if strings.TrimSpace(r.PostalCode) == "" {
		errs = append(errs, "Postal code is required")
	}

	return errs
}

func validMonth(m string) bool {
	if !validation.IsDigits(m, 1, 2) {
		return false
	}
	n, err := strconv.Atoi(m)
	return err == nil && n >= 1 && n <= 12
}

// sanitized убирает из формы данные карты, которые не нужны шлюзу, отличному от карты.
func (r Request) sanitized() Request {
	if r.Gateway == GatewayCreditCard {
		return r
	}
	return Request{Gateway: r.Gateway, Amount: r.Amount, Status: r.Status}
}
