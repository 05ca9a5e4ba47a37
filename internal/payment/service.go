package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/restaurant-orders/internal/api"
	"github.com/mmeshcher/restaurant-orders/internal/entity"
	"github.com/mmeshcher/restaurant-orders/internal/model"
	"github.com/mmeshcher/restaurant-orders/internal/result"
	"github.com/mmeshcher/restaurant-orders/internal/store"
)

// State содержит созданные за сессию платежи.
type State struct {
	Payments entity.Table[model.Payment] `json:"payments"`
	Last     *model.Payment              `json:"last"`
	Error    *string                     `json:"error"`
}

// InitialState возвращает пустое состояние.
func InitialState() State {
	return State{Payments: entity.New[model.Payment]()}
}

// Action описывает закрытое множество действий домена платежей.
type Action interface {
	isPaymentAction()
}

// PaymentCreated добавляет созданный платёж.
type PaymentCreated struct {
	Payment model.Payment
}

// SetError выставляет или сбрасывает последнюю ошибку.
type SetError struct {
	Message *string
}

func (PaymentCreated) isPaymentAction() {}
func (SetError) isPaymentAction()       {}

// Reduce применяет действие к состоянию платежей.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case PaymentCreated:
		state.Payments = entity.Add(state.Payments, a.Payment)
		p := a.Payment
		state.Last = &p
	case SetError:
		state.Error = a.Message
	}
	return state
}

// Client описывает вызов бэкенда.
type Client interface {
	Do(ctx context.Context, r api.Request, out any) error
}

// Store хранит состояние платежей.
type Store = store.Store[State, Action]

// NewStore создаёт хранилище платежей.
func NewStore(logger *zap.Logger) *Store {
	return store.New(InitialState(), Reduce, logger)
}

// Service создаёт платежи.
type Service struct {
	client Client
	store  *Store
	logger *zap.Logger
}

// NewService создаёт сервис платежей.
func NewService(client Client, st *Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, store: st, logger: logger}
}

// State возвращает текущий снимок.
func (s *Service) State() State {
	return s.store.State()
}

// envelope описывает формат ответов платёжного API: {data, error}.
type envelope struct {
	Data  *model.Payment  `json:"data"`
	Error json.RawMessage `json:"error"`
}

// CreatePayment проверяет форму и создаёт платёж. Некорректная форма возвращается
// как отказ Validation без запроса к бэкенду.
func (s *Service) CreatePayment(ctx context.Context, req Request) result.Result[model.Payment] {
	if errs := req.Validate(); len(errs) > 0 {
		return result.Failure[model.Payment](result.KindValidation, strings.Join(errs, "; "))
	}

	var resp envelope
	err := s.client.Do(ctx, api.Request{
		Method:         http.MethodPost,
		Path:           "/api/payments",
		Body:           req.sanitized(),
		IdempotencyKey: uuid.NewString(),
	}, &resp)
	if err != nil {
		s.logger.Error("create payment error", zap.Error(err), zap.String("gateway", req.Gateway))
		return result.Report[model.Payment](err, func(msg string) {
			s.store.Dispatch(SetError{Message: &msg})
		})
	}
	if resp.Data == nil {
		s.logger.Error("create payment: no payment in response", zap.ByteString("error", resp.Error))
		return result.Failure[model.Payment](result.KindValidation, "Payment data not found in the response")
	}
	if err := ctx.Err(); err != nil {
		return result.FromError[model.Payment](err)
	}

	s.logger.Info("payment created", zap.Int64("paymentID", resp.Data.ID), zap.String("gateway", resp.Data.Gateway))
	s.store.Dispatch(PaymentCreated{Payment: *resp.Data})
	return result.Success(*resp.Data)
}
