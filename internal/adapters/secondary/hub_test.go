package secondary

import (
	"testing"

	"juansecalvinio/storefront-auth/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishOnlyReachesSameSession(t *testing.T) {
	h := NewHub()

	feedA, releaseA := h.Acquire("a", domain.Snapshot{})
	feedB, releaseB := h.Acquire("b", domain.Snapshot{})
	defer releaseA()
	defer releaseB()

	var a, b []domain.Status
	defer feedA.Subscribe(func(s domain.Snapshot) { a = append(a, s.Status) })()
	defer feedB.Subscribe(func(s domain.Snapshot) { b = append(b, s.Status) })()

	h.Publish("a", domain.Snapshot{Status: domain.StatusLoading})
	h.Publish("b", domain.Snapshot{Status: domain.StatusUnauthenticated})
	h.Publish("missing", domain.Snapshot{Status: domain.StatusAuthenticated})
	h.Publish("", domain.Snapshot{Status: domain.StatusAuthenticated})

	assert.Equal(t, []domain.Status{domain.StatusLoading}, a)
	assert.Equal(t, []domain.Status{domain.StatusUnauthenticated}, b)
	assert.Equal(t, domain.StatusLoading, feedA.Current().Status)
}

func TestHub_AcquireSeedsAndSharesFeed(t *testing.T) {
	h := NewHub()
	u := &domain.User{ID: "u1"}
	initial := domain.Snapshot{Status: domain.StatusAuthenticated, Session: &domain.Session{User: u}}

	first, release1 := h.Acquire("a", initial)
	assert.Equal(t, initial, first.Current())

	// Un segundo Acquire comparte el Feed; initial ya no aplica.
	second, release2 := h.Acquire("a", domain.Snapshot{Status: domain.StatusLoading})
	assert.Same(t, first, second)
	assert.Equal(t, initial, second.Current())

	release1()
	release1()
	h.mu.Lock()
	_, ok := h.feeds["a"]
	h.mu.Unlock()
	assert.True(t, ok)

	release2()
	h.mu.Lock()
	_, ok = h.feeds["a"]
	h.mu.Unlock()
	assert.False(t, ok)
	assert.Equal(t, 0, h.Len("a"))
}

func TestHub_Len(t *testing.T) {
	h := NewHub()
	feed, release := h.Acquire("a", domain.Snapshot{})
	defer release()

	cancel := feed.Subscribe(func(domain.Snapshot) {})
	assert.Equal(t, 1, h.Len("a"))
	cancel()
	assert.Equal(t, 0, h.Len("a"))
}
