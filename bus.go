package main

import (
	"sync"

	"blocksound/gameaudio"
)

// blockBus fans block changes out to subscribed handlers in subscription
// order.
type blockBus struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func(gameaudio.BlockChange)
	order    []int
}

func newBlockBus() *blockBus {
	return &blockBus{handlers: make(map[int]func(gameaudio.BlockChange))}
}

func (b *blockBus) OnBlockChanged(fn func(gameaudio.BlockChange)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.handlers[id] = fn
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, o := range b.order {
				if o == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// publish runs the handlers on the calling goroutine.
func (b *blockBus) publish(c gameaudio.BlockChange) {
	b.mu.Lock()
	fns := make([]func(gameaudio.BlockChange), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.handlers[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
