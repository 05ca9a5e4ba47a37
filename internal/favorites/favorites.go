// Package favorites реализует домен избранных ресторанов пользователя.
package favorites

import (
	"context"
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

// State содержит избранное пользователя.
type State struct {
	Favorites entity.Table[model.Favorite] `json:"favorites"`
	Error     *string                      `json:"error"`
}

// InitialState возвращает пустое состояние.
func InitialState() State {
	return State{Favorites: entity.New[model.Favorite]()}
}

// Action описывает закрытое множество действий домена избранного.
type Action interface {
	isFavoritesAction()
}

// SetFavorites вливает избранное пользователя.
type SetFavorites struct {
	Items entity.Table[model.Favorite]
}

// AddFavorite добавляет запись избранного.
type AddFavorite struct {
	Favorite model.Favorite
}

// RemoveFavorite удаляет запись избранного.
type RemoveFavorite struct {
	ID int64
}

// SetError выставляет или сбрасывает последнюю ошибку.
type SetError struct {
	Message *string
}

func (SetFavorites) isFavoritesAction()   {}
func (AddFavorite) isFavoritesAction()    {}
func (RemoveFavorite) isFavoritesAction() {}
func (SetError) isFavoritesAction()       {}

// Reduce применяет действие к состоянию избранного.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetFavorites:
		state.Favorites = entity.Merge(state.Favorites, a.Items)
	case AddFavorite:
		state.Favorites = entity.Add(state.Favorites, a.Favorite)
	case RemoveFavorite:
		state.Favorites = entity.Remove(state.Favorites, a.ID)
	case SetError:
		state.Error = a.Message
	}
	return state
}

// ByRestaurant ищет запись избранного для ресторана.
func ByRestaurant(s State, restaurantID int64) (model.Favorite, bool) {
	for _, id := range s.Favorites.AllIDs {
		if f := s.Favorites.ByID[id]; f.RestaurantID == restaurantID {
			return f, true
		}
	}
	return model.Favorite{}, false
}

// Client описывает вызов бэкенда.
type Client interface {
	Do(ctx context.Context, r api.Request, out any) error
}

// Store хранит состояние избранного.
type Store = store.Store[State, Action]

// NewStore создаёт хранилище избранного.
func NewStore(logger *zap.Logger) *Store {
	return store.New(InitialState(), Reduce, logger)
}

// Service синхронизирует избранное с бэкендом.
type Service struct {
	client   Client
	store    *Store
	logger   *zap.Logger
	inflight flight.Group
}

// NewService создаёт сервис избранного.
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

type favoritesResponse struct {
	Entities struct {
		Favorites entity.Collection[model.Favorite] `json:"favorites"`
	} `json:"entities"`
}

// FetchAllFavorites загружает избранное пользователя.
func (s *Service) FetchAllFavorites(ctx context.Context, userID int64) result.Result[entity.Table[model.Favorite]] {
	var resp favoritesResponse
	err := s.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/api/favorites/user/" + strconv.FormatInt(userID, 10),
	}, &resp)
	if err != nil {
		s.logger.Error("fetch favorites error", zap.Error(err), zap.Int64("userID", userID))
		return result.Report[entity.Table[model.Favorite]](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[entity.Table[model.Favorite]](err)
	}

	items := resp.Entities.Favorites.Table
	s.store.Dispatch(SetFavorites{Items: items})
	return result.Success(items)
}

type favoriteRequest struct {
	UserID       int64 `json:"user_id"`
	RestaurantID int64 `json:"restaurant_id"`
}

// ToggleFavorite убирает ресторан из избранного, если он там есть, иначе добавляет.
// Возвращает true, если после вызова ресторан в избранном.
func (s *Service) ToggleFavorite(ctx context.Context, userID, restaurantID int64) result.Result[bool] {
	key := "toggle:" + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(restaurantID, 10)
	return flight.Do(ctx, &s.inflight, key, func(ctx context.Context) result.Result[bool] {
		return s.toggle(ctx, userID, restaurantID)
	})
}

func (s *Service) toggle(ctx context.Context, userID, restaurantID int64) result.Result[bool] {
	if fav, ok := ByRestaurant(s.store.State(), restaurantID); ok {
		err := s.client.Do(ctx, api.Request{
			Method: http.MethodDelete,
			Path:   "/api/favorites/" + strconv.FormatInt(fav.ID, 10),
		}, nil)
		if err != nil {
			s.logger.Error("remove favorite error", zap.Error(err), zap.Int64("favoriteID", fav.ID))
			return result.Report[bool](err, s.setError)
		}
		if err := ctx.Err(); err != nil {
			return result.FromError[bool](err)
		}
		s.store.Dispatch(RemoveFavorite{ID: fav.ID})
		return result.Success(false)
	}

	var fav model.Favorite
	err := s.client.Do(ctx, api.Request{
		Method:         http.MethodPost,
		Path:           "/api/favorites",
		Body:           favoriteRequest{UserID: userID, RestaurantID: restaurantID},
		IdempotencyKey: uuid.NewString(),
	}, &fav)
	if err != nil {
		s.logger.Error("add favorite error", zap.Error(err), zap.Int64("restaurantID", restaurantID))
		return result.Report[bool](err, s.setError)
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[bool](err)
	}
	s.store.Dispatch(AddFavorite{Favorite: fav})
	return result.Success(true)
}

func (s *Service) setError(msg string) {
	s.store.Dispatch(SetError{Message: &msg})
}
