package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmeshcher/restaurant-orders/internal/api"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

func serve(t *testing.T, s *Server, method, path string, body any, header http.Header) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	return rec.Result()
}

func TestCancelOrder_TerminalRejected(t *testing.T) {
	s := New(1, nil)
	s.AddOrder(model.Order{ID: 1, UserID: 1, Status: model.OrderStatusCompleted})

	res := serve(t, s, http.MethodPost, "/api/orders/1/cancel", nil, nil)
	defer res.Body.Close()

	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
	if got := s.Calls("POST /api/orders/{id}/cancel"); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestOrderDetails_OtherUserForbidden(t *testing.T) {
	s := New(1, nil)
	s.AddOrder(model.Order{ID: 5, UserID: 2})

	res := serve(t, s, http.MethodGet, "/api/orders/5", nil, nil)
	defer res.Body.Close()

	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusForbidden)
	}
}

func TestCreateOrder_IdempotencyKeyReplays(t *testing.T) {
	s := New(1, nil)
	body := createOrderRequest{UserID: 1, TotalPrice: 10, Items: []model.CartItem{{ID: 1, MenuItemID: 3, Quantity: 1}}}
	header := http.Header{api.IdempotencyKeyHeader: {"key-1"}}

	var first, second model.Order
	for _, out := range []*model.Order{&first, &second} {
		res := serve(t, s, http.MethodPost, "/api/orders", body, header)
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusCreated)
		}
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		res.Body.Close()
	}

	if first.ID != second.ID {
		t.Fatalf("replayed order id = %d, want %d", second.ID, first.ID)
	}
}

func TestCurrentCart_EmptyIsNotFound(t *testing.T) {
	s := New(1, nil)

	res := serve(t, s, http.MethodGet, "/api/shopping-carts/current", nil, nil)
	defer res.Body.Close()

	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestFilterMenuItems(t *testing.T) {
	s := New(1, nil)
	s.AddRestaurant(model.Restaurant{ID: 1, Name: "Taqueria"})
	s.AddMenuItem(model.MenuItem{ID: 1, RestaurantID: 1, Name: "Taco", Type: "Entree", Price: 4})
	s.AddMenuItem(model.MenuItem{ID: 2, RestaurantID: 1, Name: "Churro", Type: "Dessert", Price: 3})
	s.AddMenuItem(model.MenuItem{ID: 3, RestaurantID: 1, Name: "Burrito", Type: "Entree", Price: 11})

	res := serve(t, s, http.MethodGet, "/api/restaurants/1/menu-items/filter?type=Entree&max_price=10", nil, nil)
	defer res.Body.Close()

	var resp struct {
		Entities struct {
			MenuItems struct {
				AllIDs []int64 `json:"allIds"`
			} `json:"menuItems"`
		} `json:"entities"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Entities.MenuItems.AllIDs) != 1 || resp.Entities.MenuItems.AllIDs[0] != 1 {
		t.Fatalf("allIds = %v, want [1]", resp.Entities.MenuItems.AllIDs)
	}
}

func TestCreatePayment_InvalidCard(t *testing.T) {
	s := New(1, nil)

	res := serve(t, s, http.MethodPost, "/api/payments", paymentRequest{Gateway: "Credit Card", Amount: 5, CardNumber: "1234"}, nil)
	defer res.Body.Close()

	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
	if len(s.Payments()) != 0 {
		t.Fatalf("payment recorded for invalid card")
	}
}
