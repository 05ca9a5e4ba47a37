// Package model содержит доменные сущности клиента заказов ресторанов.
package model

import "time"

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusConfirmed  OrderStatus = "Confirmed"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// IsTerminal сообщает, что из статуса больше нет переходов.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCancelled, OrderStatusDelivered, OrderStatusCompleted:
		return true
	}
	return false
}

// Order описывает заказ пользователя.
type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	Status     OrderStatus `json:"status"`
	TotalPrice float64     `json:"total_price"`
	CreatedAt  time.Time   `json:"created_at"`
	Items      []int64     `json:"items,omitempty"`
}

// EntityID возвращает идентификатор заказа.
func (o Order) EntityID() int64 { return o.ID }

// OrderItem описывает позицию заказа. Название и цена фиксируются в момент оформления
// и не пересчитываются по текущему меню.
type OrderItem struct {
	ID         int64   `json:"id"`
	OrderID    int64   `json:"order_id,omitempty"`
	MenuItemID int64   `json:"menu_item_id,omitempty"`
	Name       string  `json:"name,omitempty"`
	Price      float64 `json:"price,omitempty"`
	Quantity   int     `json:"quantity"`
}

// EntityID возвращает идентификатор позиции заказа.
func (i OrderItem) EntityID() int64 { return i.ID }

// OrderLine описывает позицию корзины, подготовленную к отправке в заказ.
type OrderLine struct {
	MenuItemID int64   `json:"menu_item_id"`
	Quantity   int     `json:"quantity"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
}

// MenuItem описывает блюдо из меню ресторана.
type MenuItem struct {
	ID           int64   `json:"id"`
	RestaurantID int64   `json:"restaurant_id,omitempty"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Type         string  `json:"type,omitempty"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"image_url,omitempty"`
}

// EntityID возвращает идентификатор блюда.
func (m MenuItem) EntityID() int64 { return m.ID }

// Restaurant описывает ресторан.
type Restaurant struct {
	ID              int64   `json:"id"`
	OwnerID         int64   `json:"owner_id,omitempty"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	BannerImagePath string  `json:"banner_image_path,omitempty"`
	StreetAddress   string  `json:"street_address,omitempty"`
	City            string  `json:"city,omitempty"`
	State           string  `json:"state,omitempty"`
	PostalCode      string  `json:"postal_code,omitempty"`
	Country         string  `json:"country,omitempty"`
	FoodType        string  `json:"food_type,omitempty"`
	OpeningTime     string  `json:"opening_time,omitempty"`
	ClosingTime     string  `json:"closing_time,omitempty"`
	AverageRating   float64 `json:"average_rating"`
	NumReviews      int     `json:"num_reviews"`
}

// EntityID возвращает идентификатор ресторана.
func (r Restaurant) EntityID() int64 { return r.ID }

// CartItem описывает позицию корзины покупок.
type CartItem struct {
	ID         int64 `json:"id"`
	CartID     int64 `json:"shopping_cart_id,omitempty"`
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// EntityID возвращает идентификатор позиции корзины.
func (c CartItem) EntityID() int64 { return c.ID }

// Favorite описывает ресторан, добавленный пользователем в избранное.
type Favorite struct {
	ID           int64 `json:"id"`
	UserID       int64 `json:"user_id"`
	RestaurantID int64 `json:"restaurant_id"`
}

// EntityID возвращает идентификатор записи избранного.
func (f Favorite) EntityID() int64 { return f.ID }

// Payment описывает запись об оплате, созданную имитацией платёжного шлюза.
type Payment struct {
	ID      int64   `json:"id"`
	OrderID *int64  `json:"order_id,omitempty"`
	Gateway string  `json:"gateway"`
	Amount  float64 `json:"amount"`
	Status  string  `json:"status"`
}

// EntityID возвращает идентификатор платежа.
func (p Payment) EntityID() int64 { return p.ID }
