// Package store содержит хранилище состояния одного домена с последовательным
// применением действий.
package store

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Reducer вычисляет новое состояние по текущему состоянию и действию.
type Reducer[S, A any] func(S, A) S

// Store хранит снимок состояния домена. Действия применяются строго в порядке вызова
// Dispatch, читатели всегда получают целый снимок.
type Store[S, A any] struct {
	mu      sync.Mutex
	state   atomic.Pointer[S]
	reduce  Reducer[S, A]
	logger  *zap.Logger
	subs    map[int]func(S)
	order   []int
	nextSub int
}

// New создаёт хранилище с начальным состоянием и редьюсером.
func New[S, A any](initial S, reduce func(S, A) S, logger *zap.Logger) *Store[S, A] {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store[S, A]{
		reduce: reduce,
		logger: logger,
		subs:   make(map[int]func(S)),
	}
	s.state.Store(&initial)
	return s
}

// State возвращает последний опубликованный снимок.
func (s *Store[S, A]) State() S {
	return *s.state.Load()
}

// Dispatch применяет действие и возвращает новое состояние. Подписчики вызываются
// под тем же замком, поэтому они не должны вызывать Dispatch синхронно.
func (s *Store[S, A]) Dispatch(action A) S {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.reduce(*s.state.Load(), action)
	s.state.Store(&next)

	s.logger.Debug("action dispatched", zap.String("action", fmt.Sprintf("%T", action)))

	for _, id := range s.order {
		s.subs[id](next)
	}

	return next
}

// Subscribe регистрирует обработчик новых снимков и возвращает функцию отписки.
func (s *Store[S, A]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			delete(s.subs, id)
			for i, existing := range s.order {
				if existing == id {
					s.order = append(s.order[:i:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}
