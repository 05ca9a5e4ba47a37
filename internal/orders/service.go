package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/api"
	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/flight"
	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/result"
	"github.com/mmeshcher/restaurant-orders/internal/store"
)

const (
	msgFetchOrdersFailed  = "Failed to fetch orders"
	msgNetworkDown        = "Network error or server is down"
	msgDetailsFailed      = "Failed to fetch order details"
	msgDetailsForbidden   = "You do not have permission to view this order."
	msgDetailsUnavailable = "Error fetching order details"
	msgNoOrderInResponse  = "Order data not found in the response"
)

// Client описывает вызов бэкенда, используемый сервисом.
type Client interface {
	Do(ctx context.Context, r api.Request, out any) error
}

// Cart даёт сервису заказов доступ к корзине: снимок позиций с зафиксированными
// ценами и локальную очистку после оформления заказа.
type Cart interface {
	Lines() []model.OrderLine
	ClearLocal()
}

// Store хранит состояние домена заказов.
type Store = store.Store[State, Action]

// NewStore создаёт хранилище домена заказов с начальным состоянием.
func NewStore(logger *zap.Logger) *Store {
	return store.New(InitialState(), NewReducer(logger).Reduce, logger)
}

// Service выполняет запросы к бэкенду и применяет их результаты к хранилищу заказов.
// Методы не возвращают сырые ошибки: любой сбой превращается в result.Failure.
type Service struct {
	client   Client
	store    *Store
	cart     Cart
	logger   *zap.Logger
	inflight flight.Group
}

// NewService создаёт сервис заказов.
func NewService(client Client, st *Store, cart Cart, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		store:  st,
		cart:   cart,
		logger: logger,
	}
}

// State возвращает текущий снимок состояния заказов.
func (s *Service) State() State {
	return s.store.State()
}

// ClearError сбрасывает последнюю ошибку домена перед новой попыткой.
func (s *Service) ClearError() {
	s.store.Dispatch(SetError{})
}

// SetLoading выставляет признак загрузки для отображения.
func (s *Service) SetLoading(loading bool) {
	s.store.Dispatch(SetLoading{Loading: loading})
}

type createOrderRequest struct {
	UserID     int64            `json:"user_id"`
	TotalPrice float64          `json:"total_price"`
	Items      []model.CartItem `json:"items"`
}

// CreateOrder создаёт заказ из переданных позиций корзины.
func (s *Service) CreateOrder(ctx context.Context, userID int64, totalPrice float64, items []model.CartItem) result.Result[model.Order] {
	var order model.Order
	err := s.client.Do(ctx, api.Request{
		Method:         http.MethodPost,
		Path:           "/api/orders",
		Body:           createOrderRequest{UserID: userID, TotalPrice: totalPrice, Items: items},
		IdempotencyKey: uuid.NewString(),
	}, &order)
	if err != nil {
		s.logger.Error("create order error", zap.Error(err), zap.Int64("userID", userID))
		return result.FromError[model.Order](err)
	}
	if order.ID == 0 {
		s.logger.Error("create order: order data not found in the response", zap.Int64("userID", userID))
		return result.Failure[model.Order](result.KindValidation, msgNoOrderInResponse)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[model.Order](err)
	}

	s.store.Dispatch(AddOrder{Order: order})
	if s.cart != nil {
		s.cart.ClearLocal()
	}
	return result.Success(order)
}

// CheckoutDetails содержит данные оформления заказа из корзины.
type CheckoutDetails struct {
	UserID     int64
	DeliveryID *int64
	PaymentID  *int64
}

// PlacedOrder описывает заказ, созданный из корзины, вместе с отправленными позициями.
type PlacedOrder struct {
	Order model.Order       `json:"order"`
	Items []model.OrderLine `json:"items"`
}

type createFromCartRequest struct {
	UserID     int64             `json:"user_id"`
	DeliveryID *int64            `json:"delivery_id"`
	PaymentID  *int64            `json:"payment_id"`
	Items      []model.OrderLine `json:"items"`
}

type createFromCartResponse struct {
	Success bool        `json:"success"`
	Order   model.Order `json:"order"`
	Error   string      `json:"error,omitempty"`
}

// CreateOrderFromCart оформляет заказ из текущей корзины. Название и цена каждой
// позиции берутся из корзины на момент оформления.
func (s *Service) CreateOrderFromCart(ctx context.Context, d CheckoutDetails) result.Result[PlacedOrder] {
	var lines []model.OrderLine
	if s.cart != nil {
		lines = s.cart.Lines()
	}
	if len(lines) == 0 {
		return result.Failure[PlacedOrder](result.KindValidation, "Shopping cart is empty")
	}

	var resp createFromCartResponse
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/api/orders/create_order",
		Body: createFromCartRequest{
			UserID:     d.UserID,
			DeliveryID: d.DeliveryID,
			PaymentID:  d.PaymentID,
			Items:      lines,
		},
		IdempotencyKey: uuid.NewString(),
	}, &resp)
	if err != nil {
		s.logger.Error("create order from cart error", zap.Error(err), zap.Int64("userID", d.UserID))
		return result.FromError[PlacedOrder](err)
	}
	if !resp.Success {
		s.logger.Error("create order from cart rejected", zap.String("error", resp.Error))
		msg := resp.Error
		if msg == "" {
			msg = "order was not created"
		}
		return result.Failure[PlacedOrder](result.KindRequest, msg)
	}
	if resp.Order.ID == 0 {
		s.logger.Error("create order from cart: order data not found in the response", zap.Int64("userID", d.UserID))
		return result.Failure[PlacedOrder](result.KindValidation, msgNoOrderInResponse)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[PlacedOrder](err)
	}

	s.store.Dispatch(SetCreatedOrder{Order: resp.Order, Items: lines})
	return result.Success(PlacedOrder{Order: resp.Order, Items: lines})
}

// DeleteOrder удаляет заказ и перезагружает список заказов пользователя.
func (s *Service) DeleteOrder(ctx context.Context, orderID, userID int64) result.Result[struct{}] {
	key := "delete:" + strconv.FormatInt(orderID, 10)
	res := flight.Do(ctx, &s.inflight, key, func(ctx context.Context) result.Result[struct{}] {
		err := s.client.Do(ctx, api.Request{
			Method: http.MethodDelete,
			Path:   orderPath(orderID),
		}, nil)
		if err != nil {
			s.logger.Error("delete order error", zap.Error(err), zap.Int64("orderID", orderID))
			return result.FromError[struct{}](err)
		}
		if err := ctx.Err(); err != nil {
			return result.FromError[struct{}](err)
		}
		s.store.Dispatch(RemoveOrder{OrderID: orderID})
		return result.Success(struct{}{})
	})
	if !res.OK() {
		return res
	}

	s.GetUserOrders(ctx, userID)
	return res
}

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// UpdateOrderStatus меняет статус заказа на бэкенде и в состоянии.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) result.Result[struct{}] {
	key := fmt.Sprintf("status:%d:%s", orderID, status)
	return flight.Do(ctx, &s.inflight, key, func(ctx context.Context) result.Result[struct{}] {
		err := s.client.Do(ctx, api.Request{
			Method: http.MethodPut,
			Path:   orderPath(orderID) + "/status",
			Body:   statusRequest{Status: status},
		}, nil)
		if err != nil {
			s.logger.Error("update order status error", zap.Error(err), zap.Int64("orderID", orderID))
			return result.FromError[struct{}](err)
		}
		if err := ctx.Err(); err != nil {
			return result.FromError[struct{}](err)
		}
		s.store.Dispatch(UpdateOrderStatus{OrderID: orderID, Status: status})
		return result.Success(struct{}{})
	})
}

type userOrdersResponse struct {
	Entities struct {
		Orders entity.Collection[model.Order] `json:"orders"`
	} `json:"entities"`
}

// GetUserOrders загружает заказы пользователя. Ошибка записывается в состояние домена.
func (s *Service) GetUserOrders(ctx context.Context, userID int64) result.Result[entity.Table[model.Order]] {
	var resp userOrdersResponse
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/api/orders/user/" + strconv.FormatInt(userID, 10),
	}, &resp)
	if err != nil {
		s.logger.Error("get user orders error", zap.Error(err), zap.Int64("userID", userID))
		res := result.FromError[entity.Table[model.Order]](err)
		switch res.Kind() {
		case result.KindCanceled:
		case result.KindRequest:
			var rerr *api.RequestError
			msg := msgFetchOrdersFailed
			if errors.As(err, &rerr) && rerr.Message != "" {
				msg = rerr.Message
			}
			s.store.Dispatch(SetError{Message: ErrorMessage(msg)})
		default:
			s.store.Dispatch(SetError{Message: ErrorMessage(msgNetworkDown)})
		}
		return res
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[entity.Table[model.Order]](err)
	}

	orders := resp.Entities.Orders.Table
	s.store.Dispatch(SetUserOrders{Orders: orders})
	return result.Success(orders)
}

type reorderResponse struct {
	Entities struct {
		Orders entity.Collection[model.Order] `json:"orders"`
	} `json:"entities"`
}

// ReorderPastOrder просит бэкенд повторить прошлый заказ и возвращает id нового заказа.
func (s *Service) ReorderPastOrder(ctx context.Context, orderID int64) result.Result[int64] {
	key := "reorder:" + strconv.FormatInt(orderID, 10)
	return flight.Do(ctx, &s.inflight, key, func(ctx context.Context) result.Result[int64] {
		var resp reorderResponse
		err := s.client.Do(ctx, api.Request{
			Method:         http.MethodPost,
			Path:           orderPath(orderID) + "/reorder",
			IdempotencyKey: uuid.NewString(),
		}, &resp)
		if err != nil {
			s.logger.Error("reorder error", zap.Error(err), zap.Int64("orderID", orderID))
			return result.FromError[int64](err)
		}

		orders := resp.Entities.Orders.Table
		if orders.Len() == 0 {
			s.logger.Error("reorder: new order data not found in the response", zap.Int64("orderID", orderID))
			return result.Failure[int64](result.KindValidation, "New order data not found in the response")
		}
		newID := orders.AllIDs[0]
		order, _ := orders.Get(newID)

		if err := ctx.Err(); err != nil {
			return result.FromError[int64](err)
		}
		s.store.Dispatch(ReorderPastOrder{Order: order})
		return result.Success(newID)
	})
}

type orderItemsResponse struct {
	Entities struct {
		OrderItems entity.Collection[model.OrderItem] `json:"orderItems"`
	} `json:"entities"`
}

// GetOrderItems загружает позиции одного заказа.
func (s *Service) GetOrderItems(ctx context.Context, orderID int64) result.Result[entity.Table[model.OrderItem]] {
	var resp orderItemsResponse
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   orderPath(orderID) + "/items",
	}, &resp)
	if err != nil {
		s.logger.Error("get order items error", zap.Error(err), zap.Int64("orderID", orderID))
		return result.FromError[entity.Table[model.OrderItem]](err)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[entity.Table[model.OrderItem]](err)
	}

	items := resp.Entities.OrderItems.Table
	s.store.Dispatch(SetOrderItems{OrderItems: items})
	return result.Success(items)
}

// CancelOrder отменяет заказ. Одновременные отмены одного заказа объединяются в один запрос.
func (s *Service) CancelOrder(ctx context.Context, orderID int64) result.Result[struct{}] {
	key := "cancel:" + strconv.FormatInt(orderID, 10)
	return flight.Do(ctx, &s.inflight, key, func(ctx context.Context) result.Result[struct{}] {
		err := s.client.Do(ctx, api.Request{
			Method: http.MethodPost,
			Path:   orderPath(orderID) + "/cancel",
		}, nil)
		if err != nil {
			s.logger.Error("cancel order error", zap.Error(err), zap.Int64("orderID", orderID))
			return result.FromError[struct{}](err)
		}
		if err := ctx.Err(); err != nil {
			return result.FromError[struct{}](err)
		}
		s.logger.Info("order cancelled", zap.Int64("orderID", orderID))
		s.store.Dispatch(CancelOrder{OrderID: orderID})
		return result.Success(struct{}{})
	})
}

type orderDetailsResponse struct {
	Order      model.Order                        `json:"order"`
	OrderItems entity.Collection[model.OrderItem] `json:"orderItems"`
	MenuItems  entity.Collection[model.MenuItem]  `json:"menuItems"`
}

// GetOrderDetails загружает заказ вместе с позициями и блюдами. Ошибка записывается
// в состояние домена; отказ в доступе получает отдельное сообщение.
func (s *Service) GetOrderDetails(ctx context.Context, orderID int64) result.Result[model.Order] {
	var resp orderDetailsResponse
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   orderPath(orderID),
	}, &resp)
	if err != nil {
		s.logger.Error("get order details error", zap.Error(err), zap.Int64("orderID", orderID))
		res := result.FromError[model.Order](err)
		if res.Kind() != result.KindCanceled {
			s.store.Dispatch(SetError{Message: ErrorMessage(detailsErrorMessage(err))})
		}
		return res
	}
	if resp.Order.ID == 0 {
		s.logger.Error("get order details: order data not found in the response", zap.Int64("orderID", orderID))
		return result.Failure[model.Order](result.KindValidation, msgNoOrderInResponse)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[model.Order](err)
	}

	s.store.Dispatch(SetOrderDetails{
		Order:      resp.Order,
		OrderItems: resp.OrderItems.Table,
		MenuItems:  resp.MenuItems.Table,
	})
	return result.Success(resp.Order)
}

func detailsErrorMessage(err error) string {
	var rerr *api.RequestError
	if !errors.As(err, &rerr) {
		return msgDetailsUnavailable
	}
	if !rerr.JSON {
		return fmt.Sprintf("Server responded with status: %d", rerr.StatusCode)
	}
	if rerr.Forbidden() {
		if rerr.Description != "" {
			return rerr.Description
		}
		return msgDetailsForbidden
	}
	if rerr.Message != "" {
		return rerr.Message
	}
	return msgDetailsFailed
}

func orderPath(orderID int64) string {
	return "/api/orders/" + strconv.FormatInt(orderID, 10)
}
