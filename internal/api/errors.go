package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// RequestError описывает ответ бэкенда со статусом не из диапазона 2xx.
// Message приводит к одному полю сообщения, которое разные эндпоинты кладут
// в message, error, errors или description.
type RequestError struct {
	StatusCode  int
	Message     string
	Description string
	// JSON равен false, если тело ответа не удалось разобрать как JSON-объект.
	JSON bool
	Body []byte
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status: %d: %s", e.StatusCode, e.Message)
}

// Forbidden сообщает, что у пользователя нет доступа к ресурсу.
func (e *RequestError) Forbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// NotFound сообщает, что ресурс не найден.
func (e *RequestError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// NetworkError описывает запрос, который не получил ответа.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError описывает успешный ответ, тело которого не соответствует ожидаемой форме.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type errorBody struct {
	Message     json.RawMessage `json:"message"`
	Error       json.RawMessage `json:"error"`
	Errors      json.RawMessage `json:"errors"`
	Description json.RawMessage `json:"description"`
}

func newRequestError(status int, raw []byte) *RequestError {
	rerr := &RequestError{StatusCode: status, Body: raw}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return rerr
	}
	rerr.JSON = true
	rerr.Description = flatten(body.Description)

	for _, field := range []json.RawMessage{body.Message, body.Error, body.Errors, body.Description} {
		if msg := flatten(field); msg != "" {
			rerr.Message = msg
			break
		}
	}

	return rerr
}

// flatten превращает строку, массив или объект ошибок формы в одну строку.
func flatten(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if msg := flatten(item); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if msg := flatten(fields[k]); msg != "" {
				parts = append(parts, k+": "+msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	return ""
}
