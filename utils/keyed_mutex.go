package utils

import (
	"sync"
)

// KeyedMutex serializes mutations per key (event id, team id). Capacity
// checks followed by inserts must not interleave for the same event, so
// every such section locks its key first.
type KeyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
