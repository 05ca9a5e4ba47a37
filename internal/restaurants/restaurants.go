// Package restaurants реализует домен ресторанов.
package restaurants

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/api"
	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/result"
	"github.com/mmeshcher/restaurant-orders/internal/store"
)

// State содержит состояние домена ресторанов.
type State struct {
	Restaurants entity.Table[model.Restaurant] `json:"restaurants"`
	Selected    *model.Restaurant              `json:"selected"`
	IsLoading   bool                           `json:"isLoading"`
	Error       *string                        `json:"error"`
}

// InitialState возвращает пустое состояние.
func InitialState() State {
	return State{Restaurants: entity.New[model.Restaurant]()}
}

// Action описывает закрытое множество действий домена ресторанов.
type Action interface {
	isRestaurantsAction()
}

// SetRestaurants вливает список ресторанов.
type SetRestaurants struct {
	Items entity.Table[model.Restaurant]
}

// SetRestaurantDetails вставляет ресторан и делает его выбранным.
type SetRestaurantDetails struct {
	Restaurant model.Restaurant
}

// SetLoading выставляет признак загрузки.
type SetLoading struct {
	Loading bool
}

// SetError выставляет или сбрасывает последнюю ошибку.
type SetError struct {
	Message *string
}

func (SetRestaurants) isRestaurantsAction()       {}
func (SetRestaurantDetails) isRestaurantsAction() {}
func (SetLoading) isRestaurantsAction()           {}
func (SetError) isRestaurantsAction()             {}

// Reduce применяет действие к состоянию домена ресторанов.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetRestaurants:
		state.Restaurants = entity.Merge(state.Restaurants, a.Items)
	case SetRestaurantDetails:
		state.Restaurants = entity.Add(state.Restaurants, a.Restaurant)
		r := a.Restaurant
		state.Selected = &r
	case SetLoading:
		state.IsLoading = a.Loading
	case SetError:
		state.Error = a.Message
	}
	return state
}

// Client описывает вызов бэкенда.
type Client interface {
	Do(ctx context.Context, r api.Request, out any) error
}

// Store хранит состояние домена ресторанов.
type Store = store.Store[State, Action]

// NewStore создаёт хранилище домена ресторанов.
func NewStore(logger *zap.Logger) *Store {
	return store.New(InitialState(), Reduce, logger)
}

// Service загружает рестораны.
type Service struct {
	client Client
	store  *Store
	logger *zap.Logger
}

// NewService создаёт сервис ресторанов.
func NewService(client Client, st *Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, store: st, logger: logger}
}

// State возвращает текущий снимок.
func (s *Service) State() State {
	return s.store.State()
}

type listResponse struct {
	Entities struct {
		Restaurants entity.Collection[model.Restaurant] `json:"restaurants"`
	} `json:"entities"`
}

// GetAllRestaurants загружает список ресторанов.
func (s *Service) GetAllRestaurants(ctx context.Context) result.Result[entity.Table[model.Restaurant]] {
	var resp listResponse
	if err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/api/restaurants"}, &resp); err != nil {
		s.logger.Error("get restaurants error", zap.Error(err))
		return result.Report[entity.Table[model.Restaurant]](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[entity.Table[model.Restaurant]](err)
	}

	items := resp.Entities.Restaurants.Table
	s.store.Dispatch(SetRestaurants{Items: items})
	return result.Success(items)
}

// GetRestaurantDetails загружает один ресторан.
func (s *Service) GetRestaurantDetails(ctx context.Context, id int64) result.Result[model.Restaurant] {
	var r model.Restaurant
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/api/restaurants/" + strconv.FormatInt(id, 10),
	}, &r)
	if err != nil {
		s.logger.Error("get restaurant error", zap.Error(err), zap.Int64("restaurantID", id))
		return result.Report[model.Restaurant](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[model.Restaurant](err)
	}

	s.store.Dispatch(SetRestaurantDetails{Restaurant: r})
	return result.Success(r)
}

func (s *Service) setError(msg string) {
	s.store.Dispatch(SetError{Message: &msg})
}
