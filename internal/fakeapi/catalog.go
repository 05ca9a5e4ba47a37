package fakeapi

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

func (s *Server) listRestaurants(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"entities": entities{"restaurants": s.restaurants},
	})
}

func (s *Server) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rest, ok := s.restaurants.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Restaurant couldn't be found"})
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

func (s *Server) listMenuItems(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.restaurants.Has(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Restaurant couldn't be found"})
		return
	}
	items := s.menuOf(id, func(model.MenuItem) bool { return true })
	writeJSON(w, http.StatusOK, map[string]any{"entities": entities{"menuItems": items}})
}

func (s *Server) filterMenuItems(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	q := r.URL.Query()
	var types []string
	for _, v := range q["type"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}
	minPrice, errMin := parsePrice(q.Get("min_price"))
	maxPrice, errMax := parsePrice(q.Get("max_price"))
	if errMin != nil || errMax != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"Invalid price range"}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.menuOf(id, func(m model.MenuItem) bool {
		if len(types) > 0 && !slices.Contains(types, m.Type) {
			return false
		}
		if minPrice != nil && m.Price < *minPrice {
			return false
		}
		if maxPrice != nil && m.Price > *maxPrice {
			return false
		}
		return true
	})
	writeJSON(w, http.StatusOK, map[string]any{"entities": entities{"menuItems": items}})
}

func (s *Server) getMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.menuItems.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Menu item not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) menuOf(restaurantID int64, keep func(model.MenuItem) bool) entity.Table[model.MenuItem] {
	var items []model.MenuItem
	for _, m := range s.menuItems.Values() {
		if m.RestaurantID == restaurantID && keep(m) {
			items = append(items, m)
		}
	}
	return entity.FromSlice(items)
}

func parsePrice(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	p, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
