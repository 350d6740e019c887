package inventory

import (
	"context"
	"sync"
)

var _ ItemLocker = (*LocalLocker)(nil)

// LocalLocker lock por producto dentro del proceso (una sola instancia de la API).
// Las entradas se liberan cuando no quedan interesados en la clave.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewLocalLocker construye el locker en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

// Lock espera el turno del producto o hasta que ctx se cancele.
func (l *LocalLocker) Lock(ctx context.Context, itemID string) (func(), error) {
	l.mu.Lock()
	k, ok := l.locks[itemID]
	if !ok {
		k = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[itemID] = k
	}
	k.refs++
	l.mu.Unlock()

	select {
	case k.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(itemID, k)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-k.sem
			l.release(itemID, k)
		})
	}, nil
}

func (l *LocalLocker) release(itemID string, k *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k.refs--
	if k.refs == 0 {
		delete(l.locks, itemID)
	}
}

// size número de claves vivas (tests).
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
