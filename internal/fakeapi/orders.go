package fakeapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

type createOrderRequest struct {
	UserID     int64            `json:"user_id"`
	TotalPrice float64          `json:"total_price"`
	Items      []model.CartItem `json:"items"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": map[string][]string{"body": {"invalid JSON"}}})
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Shopping cart is empty.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.replay(w, r) {
		return
	}

	order := model.Order{
		ID:         s.newID(),
		UserID:     s.userID,
		Status:     model.OrderStatusPending,
		TotalPrice: req.TotalPrice,
		CreatedAt:  s.now(),
	}
	for _, it := range req.Items {
		oi := model.OrderItem{ID: s.newID(), OrderID: order.ID, MenuItemID: it.MenuItemID, Quantity: it.Quantity}
		s.orderItems = entity.Add(s.orderItems, oi)
		order.Items = append(order.Items, oi.ID)
	}
	s.orders = entity.Add(s.orders, order)
	s.cartItems = entity.New[model.CartItem]()

	s.respond(w, r, http.StatusCreated, order)
}

type createFromCartRequest struct {
	UserID     int64             `json:"user_id"`
	DeliveryID *int64            `json:"delivery_id"`
	PaymentID  *int64            `json:"payment_id"`
	Items      []model.OrderLine `json:"items"`
}

func (s *Server) createOrderFromCart(w http.ResponseWriter, r *http.Request) {
	var req createFromCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid JSON"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.replay(w, r) {
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Shopping cart is empty"})
		return
	}

	order := model.Order{
		ID:        s.newID(),
		UserID:    s.userID,
		Status:    model.OrderStatusPending,
		CreatedAt: s.now(),
	}
	for _, line := range req.Items {
		oi := model.OrderItem{
			ID:         s.newID(),
			OrderID:    order.ID,
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			Price:      line.Price,
			Quantity:   line.Quantity,
		}
		s.orderItems = entity.Add(s.orderItems, oi)
		order.Items = append(order.Items, oi.ID)
		order.TotalPrice += line.Price * float64(line.Quantity)
	}
	s.orders = entity.Add(s.orders, order)
	s.cartItems = entity.New[model.CartItem]()

	if req.PaymentID != nil {
		for i := range s.payments {
			if s.payments[i].ID == *req.PaymentID {
				id := order.ID
				s.payments[i].OrderID = &id
			}
		}
	}

	s.logger.Debug("order created from cart", zap.Int64("orderID", order.ID))
	s.respond(w, r, http.StatusCreated, map[string]any{"success": true, "order": order})
}

func (s *Server) userOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var list []model.Order
	for _, o := range s.orders.Values() {
		if o.UserID == userID {
			list = append(list, o)
		}
	}
	orders := entity.FromSlice(list)
	if orders.Len() == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"message":  "No orders found for the user.",
			"entities": entities{"orders": orders},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entities": entities{"orders": orders}})
}

// ownOrder ищет заказ текущего пользователя и пишет ответ с ошибкой, если его нет.
// Вызывается под s.mu.
func (s *Server) ownOrder(w http.ResponseWriter, r *http.Request) (model.Order, bool) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return model.Order{}, false
	}
	order, ok := s.orders.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found.")
		return model.Order{}, false
	}
	if order.UserID != s.userID {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error":       "Unauthorized.",
			"description": "You do not have permission to view this order.",
		})
		return model.Order{}, false
	}
	return order, true
}

func (s *Server) itemsOf(order model.Order) (entity.Table[model.OrderItem], entity.Table[model.MenuItem]) {
	var items []model.OrderItem
	var menu []model.MenuItem
	for _, oi := range s.orderItems.Values() {
		if oi.OrderID != order.ID {
			continue
		}
		items = append(items, oi)
		if m, ok := s.menuItems.Get(oi.MenuItemID); ok {
			menu = append(menu, m)
		}
	}
	return entity.FromSlice(items), entity.FromSlice(menu)
}

func (s *Server) orderDetails(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ownOrder(w, r)
	if !ok {
		return
	}
	items, menu := s.itemsOf(order)
	writeJSON(w, http.StatusOK, map[string]any{
		"order":      order,
		"orderItems": items,
		"menuItems":  menu,
	})
}

func (s *Server) orderItemsOf(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ownOrder(w, r)
	if !ok {
		return
	}
	items, menu := s.itemsOf(order)
	writeJSON(w, http.StatusOK, map[string]any{
		"entities": entities{"orderItems": items, "menuItems": menu},
	})
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ownOrder(w, r)
	if !ok {
		return
	}
	s.orders = entity.Remove(s.orders, order.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order has been successfully deleted."})
}

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ownOrder(w, r)
	if !ok {
		return
	}
	if req.Status == model.OrderStatusCancelled && order.Status.IsTerminal() {
		writeError(w, http.StatusBadRequest, "Cannot cancel a completed order.")
		return
	}
	order.Status = req.Status
	s.orders = entity.Add(s.orders, order)
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ownOrder(w, r)
	if !ok {
		return
	}
	if order.Status.IsTerminal() {
		writeError(w, http.StatusBadRequest, "Cannot cancel a completed order.")
		return
	}
	order.Status = model.OrderStatusCancelled
	s.orders = entity.Add(s.orders, order)
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) reorder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.replay(w, r) {
		return
	}
	past, ok := s.ownOrder(w, r)
	if !ok {
		return
	}
	items, _ := s.itemsOf(past)

	order := model.Order{
		ID:         s.newID(),
		UserID:     s.userID,
		Status:     model.OrderStatusPending,
		TotalPrice: past.TotalPrice,
		CreatedAt:  s.now(),
	}
	for _, it := range items.Values() {
		it.ID = s.newID()
		it.OrderID = order.ID
		s.orderItems = entity.Add(s.orderItems, it)
		order.Items = append(order.Items, it.ID)
	}
	s.orders = entity.Add(s.orders, order)

	s.respond(w, r, http.StatusOK, map[string]any{
		"message":  "Order has been successfully reordered.",
		"entities": entities{"orders": entity.FromSlice([]model.Order{order})},
	})
}
