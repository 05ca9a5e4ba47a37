package fakeapi

import (
	"time"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// SeedDemo заполняет бэкенд демонстрационными данными для пользователя s.userID.
func (s *Server) SeedDemo() {
	s.AddRestaurant(model.Restaurant{
		ID: 1, Name: "Taqueria La Esquina", FoodType: "Mexican", City: "Los Angeles",
		OpeningTime: "10:00", ClosingTime: "22:00", AverageRating: 4.6, NumReviews: 128,
	})
	s.AddRestaurant(model.Restaurant{
		ID: 2, Name: "Pho Saigon", FoodType: "Vietnamese", City: "San Jose",
		OpeningTime: "11:00", ClosingTime: "21:00", AverageRating: 4.3, NumReviews: 57,
	})

	s.AddMenuItem(model.MenuItem{ID: 1, RestaurantID: 1, Name: "Carnitas Taco", Type: "Entree", Price: 3.5})
	s.AddMenuItem(model.MenuItem{ID: 2, RestaurantID: 1, Name: "Churros", Type: "Dessert", Price: 4.25})
	s.AddMenuItem(model.MenuItem{ID: 3, RestaurantID: 1, Name: "Horchata", Type: "Beverage", Price: 2.75})
	s.AddMenuItem(model.MenuItem{ID: 4, RestaurantID: 2, Name: "Pho Tai", Type: "Entree", Price: 13})
	s.AddMenuItem(model.MenuItem{ID: 5, RestaurantID: 2, Name: "Spring Rolls", Type: "Appetizer", Price: 6.5})

	created := time.Date(2024, time.March, 2, 18, 30, 0, 0, time.UTC)
	s.AddOrder(model.Order{
		ID: 1, UserID: s.userID, Status: model.OrderStatusCompleted, TotalPrice: 11.25, CreatedAt: created,
	},
		model.OrderItem{ID: 1, MenuItemID: 1, Name: "Carnitas Taco", Price: 3.5, Quantity: 2},
		model.OrderItem{ID: 2, MenuItemID: 2, Name: "Churros", Price: 4.25, Quantity: 1},
	)
	s.AddOrder(model.Order{
		ID: 2, UserID: s.userID, Status: model.OrderStatusPending, TotalPrice: 13, CreatedAt: created.Add(72 * time.Hour),
	},
		model.OrderItem{ID: 3, MenuItemID: 4, Name: "Pho Tai", Price: 13, Quantity: 1},
	)

	s.AddFavorite(model.Favorite{ID: 1, UserID: s.userID, RestaurantID: 1})
}
