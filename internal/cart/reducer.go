package cart

import (
	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// Reduce применяет действие к состоянию корзины.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetCart:
		state.CartItems = a.Items
		if state.CartItems.ByID == nil {
			state.CartItems = entity.New[model.CartItem]()
		}
		state.MenuItemsInfo = entity.Merge(state.MenuItemsInfo, a.MenuItems)

	case ItemAdded:
		state.CartItems = entity.Merge(state.CartItems, a.Items)
		if a.MenuItem.ID != 0 {
			state.MenuItemsInfo = entity.Add(state.MenuItemsInfo, a.MenuItem)
		}

	case ItemsUpdated:
		state.CartItems = entity.Merge(state.CartItems, a.Items)

	case RemoveItem:
		state.CartItems = entity.Remove(state.CartItems, a.ID)

	case ClearCart:
		if state.CartItems.Len() > 0 {
			state.CartItems = entity.New[model.CartItem]()
		}

	case SetLoading:
		state.IsLoading = a.Loading

	case SetError:
		state.Error = a.Message
	}

	state.TotalItems = state.CartItems.Len()
	return state
}
