package fakeapi

import (
	"encoding/json"
	"net/http"

	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// cartID один на пользователя: бэкенд хранит одну корзину.
const cartID = 1

func (s *Server) currentCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := http.StatusOK
	if s.cartItems.Len() == 0 {
		status = http.StatusNotFound
	}

	var menu []model.MenuItem
	for _, it := range s.cartItems.Values() {
		if m, ok := s.menuItems.Get(it.MenuItemID); ok {
			menu = append(menu, m)
		}
	}

	writeJSON(w, status, map[string]any{
		"entities": entities{
			"shoppingCartItems": s.cartItems,
			"menuItems":         entity.FromSlice(menu),
		},
		"metadata": map[string]int{"totalItems": s.cartItems.Len()},
	})
}

type cartItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	menuItemID, ok := idParam(r, "menuItemID")
	if !ok {
		writeError(w, http.StatusBadRequest, "menu_item_id is required")
		return
	}
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": map[string][]string{"quantity": {"Quantity must be at least 1."}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.menuItems.Has(menuItemID) {
		writeError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	item := model.CartItem{ID: s.newID(), CartID: cartID, MenuItemID: menuItemID, Quantity: req.Quantity}
	s.cartItems = entity.Add(s.cartItems, item)

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Item added to cart successfully",
		"entities": entities{"shoppingCartItems": entity.FromSlice([]model.CartItem{item})},
	})
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": map[string][]string{"quantity": {"Quantity must be at least 1."}}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cartItems.Get(id)
	if !ok {
		writeError(w, http.StatusForbidden, "You don't have permission to modify this cart item.")
		return
	}
	item.Quantity = req.Quantity
	s.cartItems = entity.Add(s.cartItems, item)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Item updated successfully",
		"entities": entities{"shoppingCartItems": entity.FromSlice([]model.CartItem{item})},
	})
}

func (s *Server) deleteCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cartItems.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Cart item not found.")
		return
	}
	s.cartItems = entity.Remove(s.cartItems, id)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Item removed from cart successfully",
		"entities": entities{"shoppingCartItems": entity.FromSlice([]model.CartItem{item})},
	})
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cartItems = entity.New[model.CartItem]()
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Cart cleared successfully",
		"entities": entities{"shoppingCartItems": s.cartItems},
	})
}
