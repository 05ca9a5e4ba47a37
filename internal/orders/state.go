// Package orders реализует домен заказов: нормализованное состояние, действия,
// редьюсер и асинхронные операции с бэкендом.
package orders

import (
	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// State содержит состояние домена заказов.
type State struct {
	Orders     entity.Table[model.Order]     `json:"orders"`
	OrderItems entity.Table[model.OrderItem] `json:"orderItems"`
	MenuItems  entity.Table[model.MenuItem]  `json:"menuItems"`
	// CreatedOrder указывает на последний заказ, созданный из корзины.
	CreatedOrder *model.Order `json:"createdOrder"`
	IsLoading    bool         `json:"isLoading"`
	Error        *string      `json:"error"`
}

// InitialState возвращает пустое состояние домена.
func InitialState() State {
	return State{
		Orders:     entity.New[model.Order](),
		OrderItems: entity.New[model.OrderItem](),
		MenuItems:  entity.New[model.MenuItem](),
	}
}

// Action описывает закрытое множество действий домена заказов.
type Action interface {
	isOrdersAction()
}

// AddOrder вставляет или заменяет один заказ.
type AddOrder struct {
	Order model.Order
}

// SetOrders вливает пакет заказов, не удаляя отсутствующие в пакете.
type SetOrders struct {
	Orders entity.Table[model.Order]
}

// SetUserOrders вливает заказы пользователя после загрузки списка.
type SetUserOrders struct {
	Orders entity.Table[model.Order]
}

// SetCreatedOrder запоминает только что созданный заказ и раскладывает его позиции
// по таблицам позиций заказа и блюд. Items равный nil означает, что позиций в ответе нет.
type SetCreatedOrder struct {
	Order model.Order
	Items []model.OrderLine
}

// RemoveOrder удаляет заказ.
type RemoveOrder struct {
	OrderID int64
}

// UpdateOrderStatus меняет статус существующего заказа.
type UpdateOrderStatus struct {
	OrderID int64
	Status  model.OrderStatus
}

// CancelOrder переводит существующий заказ в статус Cancelled.
type CancelOrder struct {
	OrderID int64
}

// SetOrderDetails вливает полную информацию об одном заказе.
type SetOrderDetails struct {
	Order      model.Order
	OrderItems entity.Table[model.OrderItem]
	MenuItems  entity.Table[model.MenuItem]
}

// ReorderPastOrder добавляет заказ, созданный бэкендом по образцу прошлого.
type ReorderPastOrder struct {
	Order model.Order
}

// SetOrderItems вливает пакет позиций заказа.
type SetOrderItems struct {
	OrderItems entity.Table[model.OrderItem]
}

// SetLoading выставляет признак загрузки.
type SetLoading struct {
	Loading bool
}

// SetError выставляет или (при nil) сбрасывает последнюю ошибку.
type SetError struct {
	Message *string
}

func (AddOrder) isOrdersAction()          {}
func (SetOrders) isOrdersAction()         {}
func (SetUserOrders) isOrdersAction()     {}
func (SetCreatedOrder) isOrdersAction()   {}
func (RemoveOrder) isOrdersAction()       {}
func (UpdateOrderStatus) isOrdersAction() {}
func (CancelOrder) isOrdersAction()       {}
func (SetOrderDetails) isOrdersAction()   {}
func (ReorderPastOrder) isOrdersAction()  {}
func (SetOrderItems) isOrdersAction()     {}
func (SetLoading) isOrdersAction()        {}
func (SetError) isOrdersAction()          {}

// ErrorMessage возвращает указатель на сообщение для SetError.
func ErrorMessage(msg string) *string {
	return &msg
}
