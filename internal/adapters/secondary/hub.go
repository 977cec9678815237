package secondary

import (
	"sync"

	"juansecalvinio/storefront-auth/internal/core/domain"
	"juansecalvinio/storefront-auth/internal/ports/secondary"
)

// Hub agrupa un Feed por sesión de navegador. Un Feed existe sólo mientras
// alguien lo tiene adquirido.
type Hub struct {
	mu    sync.Mutex
	feeds map[string]*hubEntry
}

type hubEntry struct {
	feed *Feed
	refs int
}

var _ secondary.SessionHub = (*Hub)(nil)

// NewHub crea un Hub vacío.
func NewHub() *Hub {
	return &Hub{feeds: make(map[string]*hubEntry)}
}

// Acquire devuelve el Feed de la sesión key, creándolo con initial si no
// existía. Al liberar la última referencia el Feed se elimina.
func (h *Hub) Acquire(key string, initial domain.Snapshot) (secondary.SessionFeed, func()) {
	h.mu.Lock()
	entry, ok := h.feeds[key]
	if !ok {
		entry = &hubEntry{feed: NewFeed(initial)}
		h.feeds[key] = entry
	}
	entry.refs++
	h.mu.Unlock()

	var once sync.Once
	return entry.feed, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			entry.refs--
			if entry.refs == 0 && h.feeds[key] == entry {
				delete(h.feeds, key)
			}
		})
	}
}

// Publish entrega s a los suscriptores de la sesión key. Si nadie tiene el
// Feed adquirido no hace nada.
func (h *Hub) Publish(key string, s domain.Snapshot) {
	if key == "" {
		return
	}
	h.mu.Lock()
	entry, ok := h.feeds[key]
	h.mu.Unlock()
	if ok {
		entry.feed.Publish(s)
	}
}

// Len devuelve la cantidad de suscriptores del Feed de la sesión key.
func (h *Hub) Len(key string) int {
	h.mu.Lock()
	entry, ok := h.feeds[key]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	return entry.feed.Len()
}
