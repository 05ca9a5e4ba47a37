// Package cart реализует домен корзины покупок текущего пользователя.
package cart

import (
	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// State содержит состояние корзины. MenuItemsInfo хранит снимки блюд на момент
// добавления в корзину: по ним считается сумма и собираются позиции заказа.
type State struct {
	CartItems     entity.Table[model.CartItem] `json:"cartItems"`
	MenuItemsInfo entity.Table[model.MenuItem] `json:"menuItemsInfo"`
	TotalItems    int                          `json:"totalItems"`
	IsLoading     bool                         `json:"isLoading"`
	Error         *string                      `json:"error"`
}

// InitialState возвращает пустую корзину.
func InitialState() State {
	return State{
		CartItems:     entity.New[model.CartItem](),
		MenuItemsInfo: entity.New[model.MenuItem](),
	}
}

// Action описывает закрытое множество действий корзины.
type Action interface {
	isCartAction()
}

// SetCart заменяет содержимое корзины целиком.
type SetCart struct {
	Items     entity.Table[model.CartItem]
	MenuItems entity.Table[model.MenuItem]
}

// ItemAdded вливает добавленные позиции и запоминает снимок блюда.
type ItemAdded struct {
	Items    entity.Table[model.CartItem]
	MenuItem model.MenuItem
}

// ItemsUpdated вливает изменённые позиции.
type ItemsUpdated struct {
	Items entity.Table[model.CartItem]
}

// RemoveItem удаляет позицию корзины.
type RemoveItem struct {
	ID int64
}

// ClearCart очищает корзину.
type ClearCart struct{}

// SetLoading выставляет признак загрузки.
type SetLoading struct {
	Loading bool
}

// SetError выставляет или сбрасывает последнюю ошибку.
type SetError struct {
	Message *string
}

func (SetCart) isCartAction()      {}
func (ItemAdded) isCartAction()    {}
func (ItemsUpdated) isCartAction() {}
func (RemoveItem) isCartAction()   {}
func (ClearCart) isCartAction()    {}
func (SetLoading) isCartAction()   {}
func (SetError) isCartAction()     {}

// Subtotal возвращает сумму корзины по ценам из снимков блюд.
func Subtotal(s State) float64 {
	var total float64
	for _, id := range s.CartItems.AllIDs {
		item := s.CartItems.ByID[id]
		total += float64(item.Quantity) * s.MenuItemsInfo.ByID[item.MenuItemID].Price
	}
	return total
}

// Lines собирает позиции корзины в порядке добавления вместе с названием и ценой блюда.
func Lines(s State) []model.OrderLine {
	lines := make([]model.OrderLine, 0, s.CartItems.Len())
	for _, id := range s.CartItems.AllIDs {
		item := s.CartItems.ByID[id]
		info := s.MenuItemsInfo.ByID[item.MenuItemID]
		lines = append(lines, model.OrderLine{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Name:       info.Name,
			Price:      info.Price,
		})
	}
	return lines
}
