package cart

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/api"
	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/result"
	"github.com/mmeshcher/restaurant-orders/internal/store"
)

const msgQuantity = "Quantity must be at least 1"

// Client описывает вызов бэкенда, используемый сервисом корзины.
type Client interface {
	Do(ctx context.Context, r api.Request, out any) error
}

// Store хранит состояние корзины.
type Store = store.Store[State, Action]

// NewStore создаёт хранилище пустой корзины.
func NewStore(logger *zap.Logger) *Store {
	return store.New(InitialState(), Reduce, logger)
}

// Service синхронизирует корзину с бэкендом.
type Service struct {
	client Client
	store  *Store
	logger *zap.Logger
}

// NewService создаёт сервис корзины.
func NewService(client Client, st *Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, store: st, logger: logger}
}

// State возвращает текущий снимок корзины.
func (s *Service) State() State {
	return s.store.State()
}

// Lines возвращает позиции корзины, готовые к оформлению заказа.
func (s *Service) Lines() []model.OrderLine {
	return Lines(s.store.State())
}

// Subtotal возвращает сумму корзины без доставки.
func (s *Service) Subtotal() float64 {
	return Subtotal(s.store.State())
}

// ClearLocal очищает корзину без обращения к бэкенду.
func (s *Service) ClearLocal() {
	s.store.Dispatch(ClearCart{})
}

type cartResponse struct {
	Entities struct {
		ShoppingCartItems entity.Collection[model.CartItem] `json:"shoppingCartItems"`
		MenuItems         entity.Collection[model.MenuItem] `json:"menuItems"`
	} `json:"entities"`
	Metadata struct {
		TotalItems int `json:"totalItems"`
	} `json:"metadata"`
}

// FetchCurrentCart загружает корзину текущего пользователя. Ответ 404 означает,
// что корзины ещё нет, и приводит к пустой корзине.
func (s *Service) FetchCurrentCart(ctx context.Context) result.Result[entity.Table[model.CartItem]] {
	var resp cartResponse
	err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/api/shopping-carts/current"}, &resp)

	var rerr *api.RequestError
	switch {
	case errors.As(err, &rerr) && rerr.NotFound():
		s.logger.Debug("no shopping cart yet")
		resp = cartResponse{}
	case err != nil:
		s.logger.Error("fetch cart error", zap.Error(err))
		return result.Report[entity.Table[model.CartItem]](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[entity.Table[model.CartItem]](err)
	}

	items := resp.Entities.ShoppingCartItems.Table
	s.store.Dispatch(SetCart{Items: items, MenuItems: resp.Entities.MenuItems.Table})
	return result.Success(s.store.State().CartItems)
}

type addItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// AddItemToCart добавляет блюдо в корзину и запоминает его снимок для расчёта суммы.
func (s *Service) AddItemToCart(ctx context.Context, item model.MenuItem, quantity int) result.Result[entity.Table[model.CartItem]] {
	if quantity < 1 {
		return result.Failure[entity.Table[model.CartItem]](result.KindValidation, msgQuantity)
	}

	var resp cartResponse
	err := s.client.Do(ctx, api.Request{
		Method:         http.MethodPost,
		Path:           "/api/shopping-carts/" + strconv.FormatInt(item.ID, 10) + "/items",
		Body:           addItemRequest{MenuItemID: item.ID, Quantity: quantity},
		IdempotencyKey: uuid.NewString(),
	}, &resp)
	if err != nil {
		s.logger.Error("add item to cart error", zap.Error(err), zap.Int64("menuItemID", item.ID))
		return result.Report[entity.Table[model.CartItem]](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[entity.Table[model.CartItem]](err)
	}

	items := resp.Entities.ShoppingCartItems.Table
	s.store.Dispatch(ItemAdded{Items: items, MenuItem: item})
	return result.Success(items)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem меняет количество позиции корзины.
func (s *Service) UpdateCartItem(ctx context.Context, itemID int64, quantity int) result.Result[entity.Table[model.CartItem]] {
	if quantity < 1 {
		return result.Failure[entity.Table[model.CartItem]](result.KindValidation, msgQuantity)
	}

	var resp cartResponse
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodPut,
		Path:   itemPath(itemID),
		Body:   updateItemRequest{Quantity: quantity},
	}, &resp)
	if err != nil {
		s.logger.Error("update cart item error", zap.Error(err), zap.Int64("itemID", itemID))
		return result.Report[entity.Table[model.CartItem]](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[entity.Table[model.CartItem]](err)
	}

	items := resp.Entities.ShoppingCartItems.Table
	if items.Len() == 0 {
		// бэкенд не вернул позицию, обновляем количество в известной позиции
		if current, ok := s.store.State().CartItems.Get(itemID); ok {
			current.Quantity = quantity
			items = entity.FromSlice([]model.CartItem{current})
		}
	}
	s.store.Dispatch(ItemsUpdated{Items: items})
	return result.Success(items)
}

// RemoveCartItem удаляет позицию из корзины.
func (s *Service) RemoveCartItem(ctx context.Context, itemID int64) result.Result[struct{}] {
	err := s.client.Do(ctx, api.Request{Method: http.MethodDelete, Path: itemPath(itemID)}, nil)
	if err != nil {
		s.logger.Error("remove cart item error", zap.Error(err), zap.Int64("itemID", itemID))
		return result.Report[struct{}](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[struct{}](err)
	}

	s.store.Dispatch(RemoveItem{ID: itemID})
	return result.Success(struct{}{})
}

// ClearCart очищает корзину на бэкенде и локально. Отсутствие корзины на бэкенде
// не считается ошибкой.
func (s *Service) ClearCart(ctx context.Context) result.Result[struct{}] {
	err := s.client.Do(ctx, api.Request{Method: http.MethodDelete, Path: "/api/shopping-carts/current/clear"}, nil)

	var rerr *api.RequestError
	switch {
	case errors.As(err, &rerr) && rerr.NotFound():
	case err != nil:
		s.logger.Error("clear cart error", zap.Error(err))
		return result.Report[struct{}](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[struct{}](err)
	}

	s.store.Dispatch(ClearCart{})
	return result.Success(struct{}{})
}

func (s *Service) setError(msg string) {
	s.store.Dispatch(SetError{Message: &msg})
}

func itemPath(itemID int64) string {
	return "/api/shopping-carts/items/" + strconv.FormatInt(itemID, 10)
}
