package menu

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/api"
	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/result"
	"github.com/mmeshcher/restaurant-orders/internal/store"
)

// Client описывает вызов бэкенда, используемый сервисом блюд.
type Client interface {
	Do(ctx context.Context, r api.Request, out any) error
}

// Store хранит состояние домена блюд.
type Store = store.Store[State, Action]

// NewStore создаёт хранилище домена блюд.
func NewStore(logger *zap.Logger) *Store {
	return store.New(InitialState(), Reduce, logger)
}

// Service загружает меню ресторанов.
type Service struct {
	client Client
	store  *Store
	logger *zap.Logger
}

// NewService создаёт сервис блюд.
func NewService(client Client, st *Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, store: st, logger: logger}
}

// State возвращает текущий снимок домена блюд.
func (s *Service) State() State {
	return s.store.State()
}

type menuItemsResponse struct {
	Entities struct {
		MenuItems entity.Collection[model.MenuItem] `json:"menuItems"`
	} `json:"entities"`
}

// GetMenuItemsByRestaurant загружает меню ресторана.
func (s *Service) GetMenuItemsByRestaurant(ctx context.Context, restaurantID int64) result.Result[entity.Table[model.MenuItem]] {
	var resp menuItemsResponse
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   restaurantPath(restaurantID) + "/menu-items",
	}, &resp)
	if err != nil {
		s.logger.Error("get menu items error", zap.Error(err), zap.Int64("restaurantID", restaurantID))
		return result.Report[entity.Table[model.MenuItem]](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[entity.Table[model.MenuItem]](err)
	}

	items := resp.Entities.MenuItems.Table
	s.store.Dispatch(SetRestaurantMenuItems{RestaurantID: restaurantID, Items: items})
	return result.Success(items)
}

// Filter задаёт фильтр меню. Пустой фильтр означает полное меню.
type Filter struct {
	Types    []string
	MinPrice *float64
	MaxPrice *float64
}

// Empty сообщает, что фильтр ничего не ограничивает.
func (f Filter) Empty() bool {
	return len(f.Types) == 0 && f.MinPrice == nil && f.MaxPrice == nil
}

func (f Filter) query() url.Values {
	q := url.Values{}
	for _, t := range f.Types {
		q.Add("type", t)
	}
	if f.MinPrice != nil {
		q.Set("min_price", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("max_price", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	return q
}

// GetFilteredMenuItems загружает блюда ресторана по фильтру. Пустой фильтр
// сбрасывает текущий и перезагружает полное меню.
func (s *Service) GetFilteredMenuItems(ctx context.Context, restaurantID int64, f Filter) result.Result[entity.Table[model.MenuItem]] {
	if f.Empty() {
		s.store.Dispatch(ClearFilter{})
		return s.GetMenuItemsByRestaurant(ctx, restaurantID)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return result.Failure[entity.Table[model.MenuItem]](result.KindValidation, "Minimum price cannot exceed maximum price")
	}

	var resp menuItemsResponse
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   restaurantPath(restaurantID) + "/menu-items/filter?" + f.query().Encode(),
	}, &resp)
	if err != nil {
		s.logger.Error("filter menu items error", zap.Error(err), zap.Int64("restaurantID", restaurantID))
		return result.Report[entity.Table[model.MenuItem]](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[entity.Table[model.MenuItem]](err)
	}

	items := resp.Entities.MenuItems.Table
	s.store.Dispatch(SetFilteredMenuItems{Items: items})
	return result.Success(items)
}

// GetMenuItemDetails загружает одно блюдо и делает его выбранным.
func (s *Service) GetMenuItemDetails(ctx context.Context, menuItemID int64) result.Result[model.MenuItem] {
	var item model.MenuItem
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/api/menu-items/" + strconv.FormatInt(menuItemID, 10),
	}, &item)
	if err != nil {
		s.logger.Error("get menu item error", zap.Error(err), zap.Int64("menuItemID", menuItemID))
		return result.Report[model.MenuItem](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[model.MenuItem](err)
	}

	s.store.Dispatch(SetMenuItemDetails{Item: item})
	return result.Success(item)
}

func (s *Service) setError(msg string) {
	s.store.Dispatch(SetError{Message: &msg})
}

func restaurantPath(id int64) string {
	return "/api/restaurants/" + strconv.FormatInt(id, 10)
}
