package fakeapi

import (
	"encoding/json"
	"net/http"

	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

func (s *Server) userFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var list []model.Favorite
	for _, f := range s.favorites.Values() {
		if f.UserID == userID {
			list = append(list, f)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entities": entities{"favorites": entity.FromSlice(list)}})
}

type favoriteRequest struct {
	UserID       int64 `json:"user_id"`
	RestaurantID int64 `json:"restaurant_id"`
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RestaurantID == 0 {
		writeError(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.favorites.Values() {
		if f.UserID == req.UserID && f.RestaurantID == req.RestaurantID {
			writeError(w, http.StatusBadRequest, "Restaurant is already a favorite.")
			return
		}
	}

	fav := model.Favorite{ID: s.newID(), UserID: req.UserID, RestaurantID: req.RestaurantID}
	s.favorites = entity.Add(s.favorites, fav)
	writeJSON(w, http.StatusCreated, fav)
}

func (s *Server) deleteFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid favorite id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.favorites.Has(id) {
		writeError(w, http.StatusNotFound, "Favorite not found.")
		return
	}
	s.favorites = entity.Remove(s.favorites, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Favorite removed."})
}
