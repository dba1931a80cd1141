package runtime

import "sync"

// KeyedMutex serializes callers per key: a second caller for the same key
// queues behind the first, different keys never block each other. Outcome
// delivery is message-driven and the transport does not deduplicate, so two
// deliveries of the same outcome can arrive before the first finishes
// processing.
type KeyedMutex struct {
	mu      sync.Mutex
	locked  map[string]bool
	waiters map[string][]chan struct{}
}

// NewKeyedMutex creates an empty lock table.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locked:  make(map[string]bool),
		waiters: make(map[string][]chan struct{}),
	}
}

// Lock blocks until the key is free.
func (m *KeyedMutex) Lock(key string) {
	m.mu.Lock()
	if !m.locked[key] {
		m.locked[key] = true
		m.mu.Unlock()
		return
	}
	wait := make(chan struct{})
	m.waiters[key] = append(m.waiters[key], wait)
	m.mu.Unlock()
	<-wait
}

// Unlock releases the key and wakes the next waiter in FIFO order.
func (m *KeyedMutex) Unlock(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue := m.waiters[key]
	if len(queue) == 0 {
		delete(m.locked, key)
		delete(m.waiters, key)
		return
	}
	m.waiters[key] = queue[1:]
	// Hand the lock directly to the next waiter; locked stays true.
	close(queue[0])
}
