package secondary

import (
	"sync"
	"sync/atomic"

	"juansecalvinio/storefront-auth/internal/core/domain"
	"juansecalvinio/storefront-auth/internal/ports/secondary"
)

// Feed guarda el último Snapshot publicado y avisa a los suscriptores.
// Los callbacks no deben llamar a Publish del mismo Feed.
type Feed struct {
	current atomic.Pointer[domain.Snapshot]

	publishMu sync.Mutex // serializa las entregas

	mu   sync.Mutex
	subs map[uint64]func(domain.Snapshot)
	next uint64
}

var _ secondary.SessionFeed = (*Feed)(nil)

// NewFeed crea un Feed con el Snapshot inicial.
func NewFeed(initial domain.Snapshot) *Feed {
	f := &Feed{subs: make(map[uint64]func(domain.Snapshot))}
	f.current.Store(&initial)
	return f
}

// Current devuelve el último Snapshot publicado.
func (f *Feed) Current() domain.Snapshot {
	return *f.current.Load()
}

// Publish reemplaza el Snapshot actual y lo entrega a cada suscriptor.
func (f *Feed) Publish(s domain.Snapshot) {
	f.publishMu.Lock()
	defer f.publishMu.Unlock()

	f.current.Store(&s)

	f.mu.Lock()
	subs := make([]func(domain.Snapshot), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

// Subscribe registra fn. La función devuelta lo da de baja.
func (f *Feed) Subscribe(fn func(domain.Snapshot)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Len devuelve la cantidad de suscriptores activos.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
