package checkout

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/restaurant-orders/internal/api"
	"github.com/mmeshcher/restaurant-orders/internal/cart"
	"github.com/mmeshcher/restaurant-orders/internal/fakeapi"
	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/orders"
	"github.com/mmeshcher/restaurant-orders/internal/payment"
	"github.com/mmeshcher/restaurant-orders/internal/result"
)

var taco = model.MenuItem{ID: 10, RestaurantID: 1, Name: "Taco", Price: 3.5}

type services struct {
	backend  *fakeapi.Server
	cart     *cart.Service
	orders   *orders.Service
	payments *payment.Service
}

func newServices(t *testing.T) services {
	t.Helper()

	backend := fakeapi.New(1, nil)
	backend.AddRestaurant(model.Restaurant{ID: 1, Name: "Taqueria"})
	backend.AddMenuItem(taco)

	ts := httptest.NewServer(backend.Router())
	t.Cleanup(ts.Close)
	client := api.NewClient(ts.URL, api.Options{})

	cartSvc := cart.NewService(client, cart.NewStore(nil), nil)
	return services{
		backend:  backend,
		cart:     cartSvc,
		orders:   orders.NewService(client, orders.NewStore(nil), cartSvc, nil),
		payments: payment.NewService(client, payment.NewStore(nil), nil),
	}
}

func TestRun(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	require.True(t, s.cart.AddItemToCart(ctx, taco, 2).OK())

	co := New(s.cart, s.orders, s.payments, 4.99, nil)
	res := co.Run(ctx, Input{UserID: 1, Payment: payment.Request{Gateway: payment.GatewayStripe}})

	require.True(t, res.OK(), res.Message())
	receipt := res.Value()
	assert.InDelta(t, 11.99, receipt.Amount, 1e-9)
	assert.InDelta(t, 11.99, receipt.Payment.Amount, 1e-9)

	created := s.orders.State().CreatedOrder
	require.NotNil(t, created)
	assert.Equal(t, receipt.Order.Order.ID, created.ID)
	assert.Equal(t, model.OrderItem{ID: 10, Name: "Taco", Price: 3.5, Quantity: 2}, s.orders.State().OrderItems.ByID[10])

	assert.Equal(t, 0, s.cart.State().CartItems.Len())
	assert.Equal(t, 0, s.backend.CartLen())

	payments := s.backend.Payments()
	require.Len(t, payments, 1)
	require.NotNil(t, payments[0].OrderID)
	assert.Equal(t, created.ID, *payments[0].OrderID)
}

func TestRun_EmptyCart(t *testing.T) {
	s := newServices(t)

	res := New(s.cart, s.orders, s.payments, 4.99, nil).Run(context.Background(), Input{UserID: 1, Payment: payment.Request{Gateway: payment.GatewayStripe}})

	assert.Equal(t, result.KindValidation, res.Kind())
	assert.Zero(t, s.backend.Calls("POST /api/payments"))
}

func TestRun_PaymentRejected(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	require.True(t, s.cart.AddItemToCart(ctx, taco, 1).OK())

	res := New(s.cart, s.orders, s.payments, 4.99, nil).Run(ctx, Input{UserID: 1, Payment: payment.Request{Gateway: payment.GatewayCreditCard}})

	assert.Equal(t, result.KindValidation, res.Kind())
	assert.Contains(t, res.Message(), "payment: ")
	assert.Equal(t, 1, s.cart.State().CartItems.Len())
}

type stubCart struct {
	lines   []model.OrderLine
	cleared bool
}

func (c *stubCart) Lines() []model.OrderLine { return c.lines }
func (c *stubCart) Subtotal() float64        { return 10 }
func (c *stubCart) ClearCart(context.Context) result.Result[struct{}] {
	c.cleared = true
	return result.Success(struct{}{})
}

type stubOrders struct {
	res result.Result[orders.PlacedOrder]
}

func (o stubOrders) CreateOrderFromCart(context.Context, orders.CheckoutDetails) result.Result[orders.PlacedOrder] {
	return o.res
}

type stubPayments struct{ got payment.Request }

func (p *stubPayments) CreatePayment(_ context.Context, req payment.Request) result.Result[model.Payment] {
	p.got = req
	return result.Success(model.Payment{ID: 1, Amount: req.Amount})
}

func TestRun_OrderFailureAfterPaymentKeepsCart(t *testing.T) {
	c := &stubCart{lines: []model.OrderLine{{MenuItemID: 1, Quantity: 1}}}
	p := &stubPayments{}
	o := stubOrders{res: result.Failure[orders.PlacedOrder](result.KindRequest, "Shopping cart is empty")}

	res := New(c, o, p, 2.5, nil).Run(context.Background(), Input{UserID: 1, Payment: payment.Request{Gateway: payment.GatewayPayPal}})

	assert.Equal(t, result.KindRequest, res.Kind())
	assert.Equal(t, "create order: Shopping cart is empty", res.Message())
	assert.InDelta(t, 12.5, p.got.Amount, 1e-9)
	assert.False(t, c.cleared)
}
