package recognition

import "sync"

// KeyedMutex serialises work per key. Entries are dropped once no goroutine
// holds or waits on them.
type KeyedMutex struct {
	mutex sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: map[string]*keyedLock{}}
}

// Lock blocks until key is free and returns its unlock function.
func (km *KeyedMutex) Lock(key string) func() {
	km.mutex.Lock()
	lock, ok := km.locks[key]
	if !ok {
		lock = &keyedLock{}
		km.locks[key] = lock
	}
	lock.refs++
	km.mutex.Unlock()

	lock.Lock()
	return func() {
		lock.Unlock()
		km.mutex.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(km.locks, key)
		}
		km.mutex.Unlock()
	}
}

func (km *KeyedMutex) size() int {
	km.mutex.Lock()
	defer km.mutex.Unlock()
	return len(km.locks)
}
