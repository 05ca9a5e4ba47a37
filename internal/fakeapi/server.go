// Package fakeapi содержит REST-бэкенд приложения заказов, работающий в памяти.
// Используется в тестах и для локального запуска orderctl без настоящего сервера.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/api"
	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// Server хранит данные бэкенда и обслуживает запросы от имени одного
// аутентифицированного пользователя.
type Server struct {
	mu     sync.Mutex
	logger *zap.Logger
	userID int64
	now    func() time.Time

	restaurants entity.Table[model.Restaurant]
	menuItems   entity.Table[model.MenuItem]
	orders      entity.Table[model.Order]
	orderItems  entity.Table[model.OrderItem]
	cartItems   entity.Table[model.CartItem]
	favorites   entity.Table[model.Favorite]
	payments    []model.Payment

	nextID int64
	calls  map[string]int
	// ответы на запросы с Idempotency-Key, повтор ключа возвращает сохранённый ответ
	replies map[string]reply
}

type reply struct {
	status int
	body   any
}

// New создаёт пустой бэкенд для пользователя userID.
func New(userID int64, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger:      logger,
		userID:      userID,
		now:         time.Now,
		restaurants: entity.New[model.Restaurant](),
		menuItems:   entity.New[model.MenuItem](),
		orders:      entity.New[model.Order](),
		orderItems:  entity.New[model.OrderItem](),
		cartItems:   entity.New[model.CartItem](),
		favorites:   entity.New[model.Favorite](),
		nextID:      1000,
		calls:       make(map[string]int),
		replies:     make(map[string]reply),
	}
}

// Router настраивает маршруты бэкенда.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/restaurants", s.listRestaurants)
		r.Get("/restaurants/{id}", s.getRestaurant)
		r.Get("/restaurants/{id}/menu-items", s.listMenuItems)
		r.Get("/restaurants/{id}/menu-items/filter", s.filterMenuItems)
		r.Get("/menu-items/{id}", s.getMenuItem)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", s.createOrder)
			r.Post("/create_order", s.createOrderFromCart)
			r.Get("/user/{userID}", s.userOrders)
			r.Get("/{id}", s.orderDetails)
			r.Delete("/{id}", s.deleteOrder)
			r.Get("/{id}/items", s.orderItemsOf)
			r.Put("/{id}/status", s.updateOrderStatus)
			r.Post("/{id}/cancel", s.cancelOrder)
			r.Post("/{id}/reorder", s.reorder)
		})

		r.Route("/shopping-carts", func(r chi.Router) {
			r.Get("/current", s.currentCart)
			r.Delete("/current/clear", s.clearCart)
			r.Post("/{menuItemID}/items", s.addCartItem)
			r.Put("/items/{id}", s.updateCartItem)
			r.Delete("/items/{id}", s.deleteCartItem)
		})

		r.Get("/favorites/user/{userID}", s.userFavorites)
		r.Post("/favorites", s.addFavorite)
		r.Delete("/favorites/{id}", s.deleteFavorite)

		r.Post("/payments", s.createPayment)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}

// AddRestaurant добавляет ресторан.
func (s *Server) AddRestaurant(r model.Restaurant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurants = entity.Add(s.restaurants, r)
}

// AddMenuItem добавляет блюдо.
func (s *Server) AddMenuItem(m model.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuItems = entity.Add(s.menuItems, m)
}

// AddOrder добавляет заказ вместе с позициями.
func (s *Server) AddOrder(o model.Order, items ...model.OrderItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		it.OrderID = o.ID
		s.orderItems = entity.Add(s.orderItems, it)
		o.Items = append(o.Items, it.ID)
	}
	s.orders = entity.Add(s.orders, o)
}

// AddFavorite добавляет ресторан в избранное.
func (s *Server) AddFavorite(f model.Favorite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites = entity.Add(s.favorites, f)
}

// Order возвращает заказ по идентификатору.
func (s *Server) Order(id int64) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.Get(id)
}

// CartLen возвращает количество позиций в корзине.
func (s *Server) CartLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartItems.Len()
}

// Payments возвращает созданные платежи.
func (s *Server) Payments() []model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Payment(nil), s.payments...)
}

// Calls возвращает количество обработанных запросов по шаблону маршрута,
// например "POST /api/orders/{id}/cancel".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) newID() int64 {
	s.nextID++
	return s.nextID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

type entities map[string]any

// replay отвечает сохранённым ответом, если ключ идемпотентности уже встречался.
// Вызывается под s.mu.
func (s *Server) replay(w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get(api.IdempotencyKeyHeader)
	if key == "" {
		return false
	}
	rep, ok := s.replies[key]
	if !ok {
		return false
	}
	writeJSON(w, rep.status, rep.body)
	return true
}

// respond пишет ответ и запоминает его по ключу идемпотентности. Вызывается под s.mu.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	if key := r.Header.Get(api.IdempotencyKeyHeader); key != "" {
		s.replies[key] = reply{status: status, body: body}
	}
	writeJSON(w, status, body)
}
