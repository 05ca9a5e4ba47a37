package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/api"
	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/result"
)

type stubCart struct {
	lines   []model.OrderLine
	cleared int
}

func (c *stubCart) Lines() []model.OrderLine { return c.lines }

func (c *stubCart) ClearLocal() { c.cleared++ }

func newTestService(t *testing.T, h http.Handler, cart Cart) *Service {
	t.Helper()

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	client := api.NewClient(ts.URL, api.Options{Timeout: time.Second})
	return NewService(client, NewStore(zap.NewNop()), cart, zap.NewNop())
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestCreateOrder_AddsOrderAndClearsCart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(1), req.UserID)
		assert.Len(t, req.Items, 1)
		assert.NotEmpty(t, r.Header.Get(api.IdempotencyKeyHeader))
		writeJSON(t, w, http.StatusCreated, model.Order{ID: 11, UserID: 1, Status: model.OrderStatusPending, TotalPrice: 7})
	})
	cart := &stubCart{}
	svc := newTestService(t, mux, cart)

	res := svc.CreateOrder(context.Background(), 1, 7, []model.CartItem{{ID: 1, MenuItemID: 10, Quantity: 2}})

	require.True(t, res.OK(), res.Message())
	assert.Equal(t, int64(11), res.Value().ID)
	assert.True(t, svc.State().Orders.Has(11))
	assert.Equal(t, 1, cart.cleared)
}

func TestCreateOrder_ValidationErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]any{"errors": []string{"Shopping cart is empty."}})
	})
	cart := &stubCart{}
	svc := newTestService(t, mux, cart)

	res := svc.CreateOrder(context.Background(), 1, 0, nil)

	assert.False(t, res.OK())
	assert.Equal(t, result.KindRequest, res.Kind())
	assert.Equal(t, "Shopping cart is empty.", res.Message())
	assert.Zero(t, cart.cleared)
	assert.Equal(t, 0, svc.State().Orders.Len())
}

func TestCreateOrderFromCart(t *testing.T) {
	lines := []model.OrderLine{{MenuItemID: 10, Quantity: 2, Name: "Taco", Price: 3.5}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders/create_order", func(w http.ResponseWriter, r *http.Request) {
		var req createFromCartRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, lines, req.Items)
		require.NotNil(t, req.PaymentID)
		assert.Equal(t, int64(4), *req.PaymentID)
		writeJSON(t, w, http.StatusCreated, createFromCartResponse{Success: true, Order: model.Order{ID: 5, UserID: 1, TotalPrice: 7}})
	})
	svc := newTestService(t, mux, &stubCart{lines: lines})

	paymentID := int64(4)
	res := svc.CreateOrderFromCart(context.Background(), CheckoutDetails{UserID: 1, PaymentID: &paymentID})

	require.True(t, res.OK(), res.Message())
	assert.Equal(t, int64(5), res.Value().Order.ID)

	state := svc.State()
	require.NotNil(t, state.CreatedOrder)
	assert.Equal(t, int64(5), state.CreatedOrder.ID)
	assert.Equal(t, model.OrderItem{ID: 10, Name: "Taco", Price: 3.5, Quantity: 2}, state.OrderItems.ByID[10])
}

func TestCreateOrderFromCart_EmptyCart(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}), &stubCart{})

	res := svc.CreateOrderFromCart(context.Background(), CheckoutDetails{UserID: 1})

	assert.Equal(t, result.KindValidation, res.Kind())
	assert.Zero(t, calls.Load())
}

func TestCreateOrderFromCart_NotSuccessful(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, createFromCartResponse{Success: false, Error: "payment declined"})
	}), &stubCart{lines: []model.OrderLine{{MenuItemID: 1, Quantity: 1}}})

	res := svc.CreateOrderFromCart(context.Background(), CheckoutDetails{UserID: 1})

	assert.Equal(t, result.KindRequest, res.Kind())
	assert.Equal(t, "payment declined", res.Message())
	assert.Nil(t, svc.State().CreatedOrder)
}

func TestOrderWithoutIDIsRejected(t *testing.T) {
	lines := []model.OrderLine{{MenuItemID: 10, Quantity: 1, Name: "Taco", Price: 3.5}}

	tests := []struct {
		name string
		body string
		call func(svc *Service) (result.Kind, string)
	}{
		{
			name: "create order",
			body: `{}`,
			call: func(svc *Service) (result.Kind, string) {
				res := svc.CreateOrder(context.Background(), 1, 7, []model.CartItem{{ID: 1, MenuItemID: 10, Quantity: 1}})
				return res.Kind(), res.Message()
			},
		},
		{
			name: "create order from cart",
			body: `{"success":true}`,
			call: func(svc *Service) (result.Kind, string) {
				res := svc.CreateOrderFromCart(context.Background(), CheckoutDetails{UserID: 1})
				return res.Kind(), res.Message()
			},
		},
		{
			name: "order details",
			body: `{}`,
			call: func(svc *Service) (result.Kind, string) {
				res := svc.GetOrderDetails(context.Background(), 7)
				return res.Kind(), res.Message()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := &stubCart{lines: lines}
			svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}), cart)

			kind, msg := tt.call(svc)

			assert.Equal(t, result.KindValidation, kind)
			assert.Equal(t, msgNoOrderInResponse, msg)
			state := svc.State()
			assert.Equal(t, 0, state.Orders.Len())
			assert.Empty(t, state.Orders.AllIDs)
			assert.Nil(t, state.CreatedOrder)
			assert.Equal(t, 0, state.OrderItems.Len())
			assert.Zero(t, cart.cleared)
		})
	}
}

func TestGetUserOrders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders/user/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"entities":{"orders":{"byId":{"1":{"id":1,"status":"Pending"},"2":{"id":2,"status":"Confirmed"}},"allIds":[2,1]}}}`))
	})
	svc := newTestService(t, mux, nil)

	res := svc.GetUserOrders(context.Background(), 1)

	require.True(t, res.OK(), res.Message())
	assert.Equal(t, []int64{2, 1}, svc.State().Orders.AllIDs)
	assert.Nil(t, svc.State().Error)
}

func TestGetUserOrders_RequestErrorSetsMessage(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{"message": "No orders found for the user."})
	}), nil)

	res := svc.GetUserOrders(context.Background(), 1)

	assert.Equal(t, result.KindRequest, res.Kind())
	require.NotNil(t, svc.State().Error)
	assert.Equal(t, "No orders found for the user.", *svc.State().Error)
}

func TestGetUserOrders_DefaultMessage(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{})
	}), nil)

	svc.GetUserOrders(context.Background(), 1)

	require.NotNil(t, svc.State().Error)
	assert.Equal(t, msgFetchOrdersFailed, *svc.State().Error)
}

func TestGetUserOrders_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	svc := NewService(api.NewClient(url, api.Options{Timeout: time.Second}), NewStore(nil), nil, nil)

	res := svc.GetUserOrders(context.Background(), 1)

	assert.Equal(t, result.KindNetwork, res.Kind())
	require.NotNil(t, svc.State().Error)
	assert.Equal(t, msgNetworkDown, *svc.State().Error)
}

func TestCancelOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders/1/cancel", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, model.Order{ID: 1, Status: model.OrderStatusCancelled})
	})
	svc := newTestService(t, mux, nil)
	svc.store.Dispatch(SetUserOrders{Orders: entity.FromSlice([]model.Order{
		{ID: 1, Status: model.OrderStatusPending},
		{ID: 2, Status: model.OrderStatusConfirmed},
	})})

	res := svc.CancelOrder(context.Background(), 1)

	require.True(t, res.OK(), res.Message())
	assert.Equal(t, model.OrderStatusCancelled, svc.State().Orders.ByID[1].Status)
	assert.Equal(t, model.OrderStatusConfirmed, svc.State().Orders.ByID[2].Status)
}

func TestCancelOrder_Rejected(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]any{"error": "Cannot cancel a completed order."})
	}), nil)
	svc.store.Dispatch(AddOrder{Order: model.Order{ID: 1, Status: model.OrderStatusCompleted}})

	res := svc.CancelOrder(context.Background(), 1)

	assert.Equal(t, "Cannot cancel a completed order.", res.Message())
	assert.Equal(t, model.OrderStatusCompleted, svc.State().Orders.ByID[1].Status)
}

func TestCancelOrder_CoalescesDuplicates(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.WriteHeader(http.StatusOK)
	}), nil)
	svc.store.Dispatch(AddOrder{Order: model.Order{ID: 1, Status: model.OrderStatusPending}})

	var wg sync.WaitGroup
	results := make([]result.Result[struct{}], 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.CancelOrder(context.Background(), 1)
		}(i)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, results[0].OK())
	assert.True(t, results[1].OK())
}

func TestCancelOrder_CanceledCallerDoesNotFailOthers(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.WriteHeader(http.StatusOK)
	}), nil)
	svc.store.Dispatch(AddOrder{Order: model.Order{ID: 1, Status: model.OrderStatusPending}})

	ctxA, cancelA := context.WithCancel(context.Background())
	resA := make(chan result.Result[struct{}], 1)
	resB := make(chan result.Result[struct{}], 1)

	go func() { resA <- svc.CancelOrder(ctxA, 1) }()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	go func() { resB <- svc.CancelOrder(context.Background(), 1) }()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.Equal(t, result.KindCanceled, (<-resA).Kind())

	close(release)
	b := <-resB
	require.True(t, b.OK(), b.Message())
	assert.Equal(t, model.OrderStatusCancelled, svc.State().Orders.ByID[1].Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCancelOrder_AllCallersCanceledDoesNotDispatch(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}), nil)
	svc.store.Dispatch(AddOrder{Order: model.Order{ID: 1, Status: model.OrderStatusPending}})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	res := svc.CancelOrder(ctx, 1)

	assert.Equal(t, result.KindCanceled, res.Kind())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, model.OrderStatusPending, svc.State().Orders.ByID[1].Status)
	assert.Nil(t, svc.State().Error)
}

func TestDeleteOrder_RemovesAndRefreshes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/orders/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "Order 1 has been successfully marked as deleted."})
	})
	mux.HandleFunc("GET /api/orders/user/3", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"entities":{"orders":[{"id":2,"user_id":3,"status":"Pending"}]}}`))
	})
	svc := newTestService(t, mux, nil)
	svc.store.Dispatch(SetOrders{Orders: entity.FromSlice([]model.Order{{ID: 1, UserID: 3}, {ID: 2, UserID: 3}})})

	res := svc.DeleteOrder(context.Background(), 1, 3)

	require.True(t, res.OK(), res.Message())
	assert.Equal(t, []int64{2}, svc.State().Orders.AllIDs)
}

func TestUpdateOrderStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/orders/4/status", func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, model.OrderStatusProcessing, req.Status)
		writeJSON(t, w, http.StatusOK, model.Order{ID: 4, Status: req.Status})
	})
	svc := newTestService(t, mux, nil)
	svc.store.Dispatch(AddOrder{Order: model.Order{ID: 4, Status: model.OrderStatusPending}})

	res := svc.UpdateOrderStatus(context.Background(), 4, model.OrderStatusProcessing)

	require.True(t, res.OK(), res.Message())
	assert.Equal(t, model.OrderStatusProcessing, svc.State().Orders.ByID[4].Status)
}

func TestReorderPastOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders/1/reorder", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Order has been successfully reordered.","entities":{"orders":{"byId":{"9":{"id":9,"status":"Pending"}},"allIds":[9]}}}`))
	})
	svc := newTestService(t, mux, nil)
	svc.store.Dispatch(AddOrder{Order: model.Order{ID: 1, Status: model.OrderStatusCompleted}})

	res := svc.ReorderPastOrder(context.Background(), 1)

	require.True(t, res.OK(), res.Message())
	assert.Equal(t, int64(9), res.Value())
	assert.Equal(t, []int64{1, 9}, svc.State().Orders.AllIDs)
}

func TestReorderPastOrder_MissingOrder(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"entities":{"orders":{"byId":{},"allIds":[]}}}`))
	}), nil)

	res := svc.ReorderPastOrder(context.Background(), 1)

	assert.Equal(t, result.KindValidation, res.Kind())
	assert.Equal(t, 0, svc.State().Orders.Len())
}

func TestGetOrderItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders/2/items", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"entities":{"orderItems":{"byId":{"5":{"id":5,"order_id":2,"menu_item_id":10,"quantity":1}},"allIds":[5]},"menuItems":{"byId":{},"allIds":[]}}}`))
	})
	svc := newTestService(t, mux, nil)

	res := svc.GetOrderItems(context.Background(), 2)

	require.True(t, res.OK(), res.Message())
	assert.Equal(t, []int64{5}, svc.State().OrderItems.AllIDs)
}

func TestGetOrderDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"order":{"id":2,"status":"Pending","total_price":7},
			"orderItems":{"byId":{"5":{"id":5,"order_id":2,"menu_item_id":10,"quantity":2}},"allIds":[5]},
			"menuItems":{"byId":{"10":{"id":10,"name":"Taco","price":3.5}},"allIds":[10]}
		}`))
	})
	svc := newTestService(t, mux, nil)

	res := svc.GetOrderDetails(context.Background(), 2)

	require.True(t, res.OK(), res.Message())
	state := svc.State()
	assert.True(t, state.Orders.Has(2))
	assert.Equal(t, 2, state.OrderItems.ByID[5].Quantity)
	assert.Equal(t, "Taco", state.MenuItems.ByID[10].Name)
}

func TestGetOrderDetails_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "forbidden with description", status: http.StatusForbidden, body: `{"description":"Not yours."}`, message: "Not yours."},
		{name: "forbidden default", status: http.StatusForbidden, body: `{"error":"Unauthorized."}`, message: msgDetailsForbidden},
		{name: "not found", status: http.StatusNotFound, body: `{"message":"Order not found."}`, message: "Order not found."},
		{name: "server error default", status: http.StatusInternalServerError, body: `{}`, message: msgDetailsFailed},
		{name: "not json", status: http.StatusBadGateway, body: `<html></html>`, message: "Server responded with status: 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}), nil)

			res := svc.GetOrderDetails(context.Background(), 2)

			assert.False(t, res.OK())
			require.NotNil(t, svc.State().Error)
			assert.Equal(t, tt.message, *svc.State().Error)
		})
	}
}

func TestGetOrderDetails_CanceledDoesNotDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		_, _ = w.Write([]byte(`{"order":{"id":2}}`))
	}), nil)

	res := svc.GetOrderDetails(ctx, 2)

	assert.Equal(t, result.KindCanceled, res.Kind())
	assert.False(t, svc.State().Orders.Has(2))
	assert.Nil(t, svc.State().Error)
}

func TestClearError(t *testing.T) {
	svc := NewService(nil, NewStore(nil), nil, nil)
	svc.store.Dispatch(SetError{Message: ErrorMessage("old")})
	svc.SetLoading(true)

	svc.ClearError()

	assert.Nil(t, svc.State().Error)
	assert.True(t, svc.State().IsLoading)
}
