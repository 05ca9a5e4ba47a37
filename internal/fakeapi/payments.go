package fakeapi

import (
	"encoding/json"
	"net/http"

	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/validation"
)

type paymentRequest struct {
	Gateway    string  `json:"gateway"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	CardNumber string  `json:"card_number"`
}

// createPayment имитирует платёжный шлюз: деньги не списываются, создаётся только запись.
func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"data": nil, "error": "Invalid data"})
		return
	}

	errs := map[string][]string{}
	switch req.Gateway {
	case "Stripe", "PayPal":
	case "Credit Card":
		if !validation.IsValidCardNumber(req.CardNumber) {
			errs["card_number"] = []string{"Invalid card number."}
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"data": nil, "error": "Invalid payment gateway: " + req.Gateway})
		return
	}
	if req.Amount <= 0 {
		errs["amount"] = []string{"Amount must be greater than 0."}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"data": nil, "error": errs})
		return
	}

	status := req.Status
	if status == "" {
		status = "Completed"
	}

	s.mu.Lock()
	p := model.Payment{ID: s.newID(), Gateway: req.Gateway, Amount: req.Amount, Status: status}
	s.payments = append(s.payments, p)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"data": p, "error": nil})
}
