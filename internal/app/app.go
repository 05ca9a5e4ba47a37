// Package app связывает хранилища и сервисы всех доменов вокруг одного клиента бэкенда.
package app

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/restaurant-orders/internal/api"
	"github.com/mmeshcher/restaurant-orders/internal/cart"
	"github.com/mmeshcher/restaurant-orders/internal/checkout"
	"github.com/mmeshcher/restaurant-orders/internal/favorites"
	"github.com/mmeshcher/restaurant-orders/internal/menu"
	"github.com/mmeshcher/restaurant-orders/internal/orders"
	"github.com/mmeshcher/restaurant-orders/internal/payment"
	"github.com/mmeshcher/restaurant-orders/internal/restaurants"
)

// App содержит сервисы всех доменов клиента.
type App struct {
	Orders      *orders.Service
	Cart        *cart.Service
	Menu        *menu.Service
	Restaurants *restaurants.Service
	Favorites   *favorites.Service
	Payments    *payment.Service
	Checkout    *checkout.Checkout

	logger *zap.Logger
}

// Options задаёт параметры сборки приложения.
type Options struct {
	DeliveryFee float64
	Logger      *zap.Logger
}

// New собирает приложение вокруг клиента бэкенда.
func New(client *api.Client, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cartSvc := cart.NewService(client, cart.NewStore(logger.Named("cart")), logger.Named("cart"))
	ordersSvc := orders.NewService(client, orders.NewStore(logger.Named("orders")), cartSvc, logger.Named("orders"))
	paymentsSvc := payment.NewService(client, payment.NewStore(logger.Named("payment")), logger.Named("payment"))

	return &App{
		Orders:      ordersSvc,
		Cart:        cartSvc,
		Menu:        menu.NewService(client, menu.NewStore(logger.Named("menu")), logger.Named("menu")),
		Restaurants: restaurants.NewService(client, restaurants.NewStore(logger.Named("restaurants")), logger.Named("restaurants")),
		Favorites:   favorites.NewService(client, favorites.NewStore(logger.Named("favorites")), logger.Named("favorites")),
		Payments:    paymentsSvc,
		Checkout:    checkout.New(cartSvc, ordersSvc, paymentsSvc, opts.DeliveryFee, logger.Named("checkout")),
		logger:      logger,
	}
}

// Snapshot содержит снимки состояния всех доменов.
type Snapshot struct {
	Orders      orders.State      `json:"orders"`
	Cart        cart.State        `json:"cart"`
	Menu        menu.State        `json:"menu"`
	Restaurants restaurants.State `json:"restaurants"`
	Favorites   favorites.State   `json:"favorites"`
	Payments    payment.State     `json:"payments"`
}

// Snapshot возвращает текущие снимки всех доменов.
func (a *App) Snapshot() Snapshot {
	return Snapshot{
		Orders:      a.Orders.State(),
		Cart:        a.Cart.State(),
		Menu:        a.Menu.State(),
		Restaurants: a.Restaurants.State(),
		Favorites:   a.Favorites.State(),
		Payments:    a.Payments.State(),
	}
}

// LoadHome параллельно загружает рестораны, избранное пользователя и корзину.
// Возвращает сообщения отказавших загрузок; пустой список означает успех.
func (a *App) LoadHome(ctx context.Context, userID int64) []string {
	var (
		g    errgroup.Group
		msgs = make([]string, 3)
	)

	g.Go(func() error {
		msgs[0] = a.Restaurants.GetAllRestaurants(ctx).Message()
		return nil
	})
	g.Go(func() error {
		if userID != 0 {
			msgs[1] = a.Favorites.FetchAllFavorites(ctx, userID).Message()
		}
		return nil
	})
	g.Go(func() error {
		msgs[2] = a.Cart.FetchCurrentCart(ctx).Message()
		return nil
	})
	_ = g.Wait()

	var failed []string
	for _, m := range msgs {
		if m != "" {
			failed = append(failed, m)
		}
	}
	if len(failed) > 0 {
		a.logger.Warn("home loaded with errors", zap.Strings("errors", failed))
	}
	return failed
}
