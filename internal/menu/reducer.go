package menu

import (
	"maps"

	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// Reduce применяет действие к состоянию домена блюд.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetRestaurantMenuItems:
		state.MenuItems = entity.Merge(state.MenuItems, a.Items)
		byRestaurant := maps.Clone(state.ByRestaurant)
		if byRestaurant == nil {
			byRestaurant = map[int64][]int64{}
		}
		byRestaurant[a.RestaurantID] = append([]int64(nil), a.Items.AllIDs...)
		state.ByRestaurant = byRestaurant

	case SetFilteredMenuItems:
		filtered := a.Items
		if filtered.ByID == nil {
			filtered = entity.New[model.MenuItem]()
		}
		state.Filtered = &filtered
		state.MenuItems = entity.Merge(state.MenuItems, a.Items)

	case ClearFilter:
		state.Filtered = nil

	case SetMenuItemDetails:
		state.MenuItems = entity.Add(state.MenuItems, a.Item)
		id := a.Item.ID
		state.SelectedID = &id

	case SetLoading:
		state.IsLoading = a.Loading

	case SetError:
		state.Error = a.Message
	}

	return state
}
