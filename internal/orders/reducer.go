package orders

import (
	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// Reducer применяет действия к состоянию домена заказов. Редьюсер никогда не
// завершается ошибкой: обращение к неизвестному заказу ничего не меняет.
type Reducer struct {
	logger *zap.Logger
}

// NewReducer создаёт редьюсер домена заказов.
func NewReducer(logger *zap.Logger) *Reducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reducer{logger: logger}
}

// Reduce возвращает новое состояние; исходное состояние не изменяется.
func (r *Reducer) Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddOrder:
		state.Orders = entity.Add(state.Orders, a.Order)

	case SetOrders:
		state.Orders = entity.Merge(state.Orders, a.Orders)

	case SetUserOrders:
		state.Orders = entity.Merge(state.Orders, a.Orders)

	case SetCreatedOrder:
		return r.setCreatedOrder(state, a)

	case RemoveOrder:
		state.Orders = entity.Remove(state.Orders, a.OrderID)

	case UpdateOrderStatus:
		state.Orders, _ = entity.Update(state.Orders, a.OrderID, withStatus(a.Status))

	case CancelOrder:
		state.Orders, _ = entity.Update(state.Orders, a.OrderID, withStatus(model.OrderStatusCancelled))

	case SetOrderDetails:
		state.Orders = entity.Add(state.Orders, a.Order)
		state.OrderItems = entity.Merge(state.OrderItems, a.OrderItems)
		state.MenuItems = entity.Merge(state.MenuItems, a.MenuItems)

	case ReorderPastOrder:
		if state.Orders.Has(a.Order.ID) {
			r.logger.Warn("reordered order already present, ignoring", zap.Int64("orderID", a.Order.ID))
			return state
		}
		state.Orders = entity.Add(state.Orders, a.Order)

	case SetOrderItems:
		state.OrderItems = entity.Merge(state.OrderItems, a.OrderItems)

	case SetLoading:
		state.IsLoading = a.Loading

	case SetError:
		state.Error = a.Message
	}

	return state
}

func (r *Reducer) setCreatedOrder(state State, a SetCreatedOrder) State {
	if a.Items == nil {
		r.logger.Error("set created order: items not found in payload", zap.Int64("orderID", a.Order.ID))
		return state
	}

	order := a.Order
	state.CreatedOrder = &order

	for _, item := range a.Items {
		if item.MenuItemID == 0 {
			continue
		}
		state.OrderItems = entity.Add(state.OrderItems, model.OrderItem{
			ID:       item.MenuItemID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
		if !state.MenuItems.Has(item.MenuItemID) {
			state.MenuItems = entity.Add(state.MenuItems, model.MenuItem{
				ID:    item.MenuItemID,
				Name:  item.Name,
				Price: item.Price,
			})
		}
	}

	return state
}

func withStatus(status model.OrderStatus) func(model.Order) model.Order {
	return func(o model.Order) model.Order {
		o.Status = status
		return o
	}
}
