// Package menu реализует домен блюд: меню ресторанов, фильтрация и карточка блюда.
package menu

import (
	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// State содержит состояние домена блюд. Filtered равен nil, пока фильтр не применён.
type State struct {
	MenuItems    entity.Table[model.MenuItem]  `json:"menuItems"`
	ByRestaurant map[int64][]int64             `json:"byRestaurant"`
	Filtered     *entity.Table[model.MenuItem] `json:"filtered"`
	SelectedID   *int64                        `json:"selectedId"`
	IsLoading    bool                          `json:"isLoading"`
	Error        *string                       `json:"error"`
}

// InitialState возвращает пустое состояние.
func InitialState() State {
	return State{
		MenuItems:    entity.New[model.MenuItem](),
		ByRestaurant: map[int64][]int64{},
	}
}

// Action описывает закрытое множество действий домена блюд.
type Action interface {
	isMenuAction()
}

// SetRestaurantMenuItems вливает меню ресторана и запоминает его состав.
type SetRestaurantMenuItems struct {
	RestaurantID int64
	Items        entity.Table[model.MenuItem]
}

// SetFilteredMenuItems сохраняет результат фильтрации.
type SetFilteredMenuItems struct {
	Items entity.Table[model.MenuItem]
}

// ClearFilter сбрасывает фильтр.
type ClearFilter struct{}

// SetMenuItemDetails вставляет блюдо и делает его выбранным.
type SetMenuItemDetails struct {
	Item model.MenuItem
}

// SetLoading выставляет признак загрузки.
type SetLoading struct {
	Loading bool
}

// SetError выставляет или сбрасывает последнюю ошибку.
type SetError struct {
	Message *string
}

func (SetRestaurantMenuItems) isMenuAction() {}
func (SetFilteredMenuItems) isMenuAction()   {}
func (ClearFilter) isMenuAction()            {}
func (SetMenuItemDetails) isMenuAction()     {}
func (SetLoading) isMenuAction()             {}
func (SetError) isMenuAction()               {}

// RestaurantMenu возвращает блюда ресторана в порядке, в котором их отдал бэкенд.
func RestaurantMenu(s State, restaurantID int64) []model.MenuItem {
	ids := s.ByRestaurant[restaurantID]
	items := make([]model.MenuItem, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.MenuItems.Get(id); ok {
			items = append(items, m)
		}
	}
	return items
}

// Selected возвращает выбранное блюдо.
func Selected(s State) (model.MenuItem, bool) {
	if s.SelectedID == nil {
		return model.MenuItem{}, false
	}
	return s.MenuItems.Get(*s.SelectedID)
}
