// Package result содержит явный результат асинхронных операций: успех с данными
// или отказ с видом ошибки и сообщением для пользователя.
package result

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mmeshcher/restaurant-orders/internal/api"
)

// Kind классифицирует отказ.
type Kind int

const (
	// KindValidation: входные данные или ответ бэкенда не той формы.
	KindValidation Kind = iota + 1
	// KindRequest: бэкенд ответил статусом не из диапазона 2xx.
	KindRequest
	// KindNetwork: запрос не получил ответа.
	KindNetwork
	// KindCanceled: вызывающий отменил операцию до применения результата.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRequest:
		return "request"
	case KindNetwork:
		return "network"
	case KindCanceled:
		return "canceled"
	}
	return "unknown"
}

// Error описывает отказ операции.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Result хранит либо значение, либо отказ.
type Result[T any] struct {
	value T
	err   *Error
}

// Success создаёт успешный результат.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure создаёт отказ указанного вида.
func Failure[T any](kind Kind, message string) Result[T] {
	return Result[T]{err: &Error{Kind: kind, Message: message}}
}

// FromError создаёт отказ из ошибки транспорта.
func FromError[T any](err error) Result[T] {
	return Result[T]{err: Classify(err)}
}

// Report создаёт отказ из ошибки транспорта и передаёт его сообщение в report.
// Отмена вызывающим не сообщается.
func Report[T any](err error, report func(msg string)) Result[T] {
	res := FromError[T](err)
	if res.Kind() != KindCanceled {
		report(res.Message())
	}
	return res
}

// OK сообщает об успехе.
func (r Result[T]) OK() bool { return r.err == nil }

// Value возвращает значение успешного результата.
func (r Result[T]) Value() T { return r.value }

// Err возвращает отказ или nil.
func (r Result[T]) Err() *Error { return r.err }

// Message возвращает сообщение отказа или пустую строку.
func (r Result[T]) Message() string {
	if r.err == nil {
		return ""
	}
	return r.err.Message
}

// Kind возвращает вид отказа или 0 для успеха.
func (r Result[T]) Kind() Kind {
	if r.err == nil {
		return 0
	}
	return r.err.Kind
}

// Classify приводит ошибку клиента бэкенда к отказу.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var rerr *api.RequestError
	var nerr *api.NetworkError
	var derr *api.DecodeError
	var existing *Error

	switch {
	case errors.As(err, &existing):
		return existing
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded) && !errors.As(err, &nerr):
		return &Error{Kind: KindCanceled, Message: "operation canceled", Err: err}
	case errors.As(err, &rerr):
		msg := rerr.Message
		if msg == "" {
			msg = http.StatusText(rerr.StatusCode)
		}
		return &Error{Kind: KindRequest, Message: msg, StatusCode: rerr.StatusCode, Err: err}
	case errors.As(err, &nerr):
		return &Error{Kind: KindNetwork, Message: "Network error or server is down", Err: err}
	case errors.As(err, &derr):
		return &Error{Kind: KindValidation, Message: "unexpected response from server", Err: err}
	}

	return &Error{Kind: KindNetwork, Message: err.Error(), Err: err}
}
