package query

import (
	"context"
	"sync"
)

// Watch follows one key on behalf of one screen. It loads on creation and
// reloads, bypassing the cache, whenever the key is invalidated. Results are
// delivered to onChange in request order; a response superseded by a newer
// request is dropped.
type Watch[K comparable, T any] struct {
	client      *Client[K, T]
	key         K
	onChange    func(K, Result[T])
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
	deliver     sync.Mutex

	mu     sync.Mutex
	state  Result[T]
	seq    uint64
	closed bool
}

// Watch starts following key. onChange runs on a loader goroutine and must
// not call Close.
func (c *Client[K, T]) Watch(ctx context.Context, key K, onChange func(K, Result[T])) *Watch[K, T] {
	if ctx == nil {
		ctx = context.Background()
	}
	wctx, cancel := context.WithCancel(ctx)
	w := &Watch[K, T]{
		client:   c,
		key:      key,
		onChange: onChange,
		ctx:      wctx,
		cancel:   cancel,
	}
	w.unsubscribe = c.subscribe(key, func() { w.start(true) })
	w.start(false)
	return w
}

// Key returns the followed key.
func (w *Watch[K, T]) Key() K {
	return w.key
}

// Result returns the latest state.
func (w *Watch[K, T]) Result() Result[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Refetch reloads the key bypassing the cache.
func (w *Watch[K, T]) Refetch() {
	w.start(true)
}

// Close cancels in-flight loads and waits for them. No callback runs after Close returns.
func (w *Watch[K, T]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	w.cancel()
	w.unsubscribe()
	w.wg.Wait()
}

func (w *Watch[K, T]) start(refetch bool) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.seq++
	token := w.seq
	w.state.Loading = true
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()

		var res Result[T]
		if refetch {
			res = w.client.Refetch(w.ctx, w.key)
		} else {
			res = w.client.Fetch(w.ctx, w.key)
		}

		w.deliver.Lock()
		defer w.deliver.Unlock()

		w.mu.Lock()
		if w.closed || token != w.seq {
			w.mu.Unlock()
			return
		}
		if res.Err != nil && w.state.HasData {
			res.Data = w.state.Data
			res.HasData = true
		}
		w.state = res
		w.mu.Unlock()

		if w.onChange != nil {
			w.onChange(w.key, res)
		}
	}()
}
