// Package flight объединяет одновременные одинаковые вызовы бэкенда в один запрос.
package flight

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mmeshcher/restaurant-orders/internal/result"
)

// Group объединяет вызовы по ключу. Общий запрос выполняется с собственным контекстом,
// который отменяется только когда отменились все ожидающие его вызывающие.
// Нулевое значение готово к использованию.
type Group struct {
	calls singleflight.Group

	mu    sync.Mutex
	waits map[string]*wait
}

type wait struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Do выполняет fn один раз на все одновременные вызовы с ключом key. Каждый вызывающий
// получает отказ Canceled только по своему ctx; fn получает общий контекст запроса.
func Do[T any](ctx context.Context, g *Group, key string, fn func(ctx context.Context) result.Result[T]) result.Result[T] {
	for {
		if err := ctx.Err(); err != nil {
			return result.FromError[T](err)
		}

		w := g.join(ctx, key)
		ch := g.calls.DoChan(key, func() (interface{}, error) {
			return fn(w.ctx), nil
		})

		var res result.Result[T]
		select {
		case <-ctx.Done():
			g.leave(key, w)
			return result.FromError[T](ctx.Err())
		case r := <-ch:
			g.leave(key, w)
			res = r.Val.(result.Result[T])
		}

		if err := ctx.Err(); err != nil {
			return result.FromError[T](err)
		}
		// общий запрос отменили все прежние участники, а этот вызов ещё жив: повторяем
		if res.Kind() == result.KindCanceled {
			continue
		}
		return res
	}
}

func (g *Group) join(ctx context.Context, key string) *wait {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.waits == nil {
		g.waits = make(map[string]*wait)
	}
	w, ok := g.waits[key]
	if !ok {
		wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		w = &wait{ctx: wctx, cancel: cancel}
		g.waits[key] = w
	}
	w.waiters++
	return w
}

func (g *Group) leave(key string, w *wait) {
	g.mu.Lock()
	defer g.mu.Unlock()

	w.waiters--
	if w.waiters > 0 {
		return
	}
	w.cancel()
	if g.waits[key] == w {
		delete(g.waits, key)
	}
}
