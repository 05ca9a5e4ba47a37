package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mmeshcher/restaurant-orders/internal/app"
	"github.com/mmeshcher/restaurant-orders/internal/checkout"
	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/payment"
)

const usage = `usage: orderctl [flags] <command> [args]

commands:
  home                    restaurants, favorites and cart in one snapshot
  restaurants             list restaurants
  restaurant <id>         restaurant details
  menu <restaurantID>     restaurant menu
  orders                  orders of the current user
  order <id>              order with its items
  cancel <id>             cancel an order
  reorder <id>            repeat a past order
  cart                    current cart lines and subtotal
  add <menuItemID> [qty]  add a menu item to the cart
  favorites               favorite restaurants of the current user
  favorite <restaurantID> toggle a favorite restaurant
  checkout <gateway>      pay for the cart and place the order (Stripe, PayPal)`

var errUsage = errors.New(usage)

// execute выполняет одну команду и печатает её результат в out как JSON.
func execute(ctx context.Context, a *app.App, userID int64, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "home":
		if failed := a.LoadHome(ctx, userID); len(failed) > 0 {
			return fmt.Errorf("home: %s", strings.Join(failed, "; "))
		}
		return printJSON(out, a.Snapshot())

	case "restaurants":
		res := a.Restaurants.GetAllRestaurants(ctx)
		if !res.OK() {
			return errors.New(res.Message())
		}
		return printJSON(out, res.Value().Values())

	case "restaurant":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		res := a.Restaurants.GetRestaurantDetails(ctx, id)
		if !res.OK() {
			return errors.New(res.Message())
		}
		return printJSON(out, res.Value())

	case "menu":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		res := a.Menu.GetMenuItemsByRestaurant(ctx, id)
		if !res.OK() {
			return errors.New(res.Message())
		}
		return printJSON(out, res.Value().Values())

	case "orders":
		res := a.Orders.GetUserOrders(ctx, userID)
		if !res.OK() {
			return errors.New(res.Message())
		}
		return printJSON(out, res.Value().Values())

	case "order":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		res := a.Orders.GetOrderDetails(ctx, id)
		if !res.OK() {
			return errors.New(res.Message())
		}
		state := a.Orders.State()
		items := make([]model.OrderItem, 0, len(res.Value().Items))
		for _, itemID := range res.Value().Items {
			if it, ok := state.OrderItems.Get(itemID); ok {
				items = append(items, it)
			}
		}
		return printJSON(out, struct {
			Order model.Order       `json:"order"`
			Items []model.OrderItem `json:"items"`
		}{res.Value(), items})

	case "cancel":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		if res := a.Orders.CancelOrder(ctx, id); !res.OK() {
			return errors.New(res.Message())
		}
		order, _ := a.Orders.State().Orders.Get(id)
		return printJSON(out, order)

	case "reorder":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		res := a.Orders.ReorderPastOrder(ctx, id)
		if !res.OK() {
			return errors.New(res.Message())
		}
		order, _ := a.Orders.State().Orders.Get(res.Value())
		return printJSON(out, order)

	case "cart":
		if res := a.Cart.FetchCurrentCart(ctx); !res.OK() {
			return errors.New(res.Message())
		}
		return printJSON(out, cartView(a))

	case "add":
		return addToCart(ctx, a, rest, out)

	case "favorites":
		res := a.Favorites.FetchAllFavorites(ctx, userID)
		if !res.OK() {
			return errors.New(res.Message())
		}
		return printJSON(out, res.Value().Values())

	case "favorite":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		res := a.Favorites.ToggleFavorite(ctx, userID, id)
		if !res.OK() {
			return errors.New(res.Message())
		}
		return printJSON(out, map[string]any{"restaurant_id": id, "favorite": res.Value()})

	case "checkout":
		if len(rest) != 1 {
			return errUsage
		}
		if res := a.Cart.FetchCurrentCart(ctx); !res.OK() {
			return errors.New(res.Message())
		}
		res := a.Checkout.Run(ctx, checkout.Input{UserID: userID, Payment: payment.Request{Gateway: rest[0]}})
		if !res.OK() {
			return errors.New(res.Message())
		}
		return printJSON(out, res.Value())
	}

	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

func addToCart(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	id, err := idArg(args[:1])
	if err != nil {
		return err
	}
	qty := 1
	if len(args) == 2 {
		if qty, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
	}

	item := a.Menu.GetMenuItemDetails(ctx, id)
	if !item.OK() {
		return errors.New(item.Message())
	}
	if res := a.Cart.AddItemToCart(ctx, item.Value(), qty); !res.OK() {
		return errors.New(res.Message())
	}
	return printJSON(out, cartView(a))
}

type cartSummary struct {
	Lines    []model.OrderLine `json:"lines"`
	Subtotal float64           `json:"subtotal"`
}

func cartView(a *app.App) cartSummary {
	return cartSummary{Lines: a.Cart.Lines(), Subtotal: a.Cart.Subtotal()}
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
