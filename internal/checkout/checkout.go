// Package checkout оформляет заказ из корзины: оплата, создание заказа, очистка корзины.
package checkout

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/orders"
	"github.com/mmeshcher/restaurant-orders/internal/payment"
	"github.com/mmeshcher/restaurant-orders/internal/result"
)

// Cart описывает операции корзины, нужные оформлению.
type Cart interface {
	Lines() []model.OrderLine
	Subtotal() float64
	ClearCart(ctx context.Context) result.Result[struct{}]
}

// Orders создаёт заказ из корзины.
type Orders interface {
	CreateOrderFromCart(ctx context.Context, d orders.CheckoutDetails) result.Result[orders.PlacedOrder]
}

// Payments создаёт платёж.
type Payments interface {
	CreatePayment(ctx context.Context, req payment.Request) result.Result[model.Payment]
}

// Input описывает оформление заказа.
type Input struct {
	UserID     int64
	DeliveryID *int64
	// Payment.Amount заполняется при оформлении: сумма корзины плюс доставка.
	Payment payment.Request
}

// Receipt содержит итог оформления.
type Receipt struct {
	Payment model.Payment      `json:"payment"`
	Order   orders.PlacedOrder `json:"order"`
	Amount  float64            `json:"amount"`
}

// Checkout выполняет шаги оформления по очереди. Шаги не образуют транзакцию:
// при сбое уже выполненные шаги не откатываются.
type Checkout struct {
	cart        Cart
	orders      Orders
	payments    Payments
	deliveryFee float64
	logger      *zap.Logger
}

// New создаёт оформление заказа.
func New(c Cart, o Orders, p Payments, deliveryFee float64, logger *zap.Logger) *Checkout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checkout{cart: c, orders: o, payments: p, deliveryFee: deliveryFee, logger: logger}
}

// Total возвращает сумму к оплате: корзина плюс доставка, округлённая до цента.
func (c *Checkout) Total() float64 {
	return math.Round((c.cart.Subtotal()+c.deliveryFee)*100) / 100
}

// Run оформляет заказ. Отказ шага возвращается с именем шага в сообщении.
func (c *Checkout) Run(ctx context.Context, in Input) result.Result[Receipt] {
	if len(c.cart.Lines()) == 0 {
		return result.Failure[Receipt](result.KindValidation, "Shopping cart is empty")
	}

	req := in.Payment
	req.Amount = c.Total()

	paid := c.payments.CreatePayment(ctx, req)
	if !paid.OK() {
		return stepFailure[Receipt]("payment", paid.Err())
	}
	paymentID := paid.Value().ID

	placed := c.orders.CreateOrderFromCart(ctx, orders.CheckoutDetails{
		UserID:     in.UserID,
		DeliveryID: in.DeliveryID,
		PaymentID:  &paymentID,
	})
	if !placed.OK() {
		c.logger.Error("checkout: order not created after payment",
			zap.Int64("paymentID", paymentID), zap.String("error", placed.Message()))
		return stepFailure[Receipt]("create order", placed.Err())
	}

	if cleared := c.cart.ClearCart(ctx); !cleared.OK() {
		c.logger.Warn("checkout: cart not cleared",
			zap.Int64("orderID", placed.Value().Order.ID), zap.String("error", cleared.Message()))
		return stepFailure[Receipt]("clear cart", cleared.Err())
	}

	c.logger.Info("checkout completed",
		zap.Int64("orderID", placed.Value().Order.ID), zap.Int64("paymentID", paymentID), zap.Float64("amount", req.Amount))
	return result.Success(Receipt{Payment: paid.Value(), Order: placed.Value(), Amount: req.Amount})
}

func stepFailure[T any](step string, err *result.Error) result.Result[T] {
	return result.Failure[T](err.Kind, step+": "+err.Message)
}
