package secondary

import (
	"sync"
	"testing"

	"juansecalvinio/storefront-auth/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_CurrentAndPublish(t *testing.T) {
	f := NewFeed(domain.Snapshot{Status: domain.StatusLoading})
	assert.Equal(t, domain.StatusLoading, f.Current().Status)

	var got []domain.Snapshot
	cancel := f.Subscribe(func(s domain.Snapshot) { got = append(got, s) })

	u := &domain.User{ID: "u1"}
	auth := domain.Snapshot{Status: domain.StatusAuthenticated, Session: &domain.Session{User: u}}
	f.Publish(auth)
	assert.Equal(t, auth, f.Current())

	cancel()
	cancel()
	f.Publish(domain.Snapshot{Status: domain.StatusUnauthenticated})

	require.Len(t, got, 1)
	assert.Equal(t, auth, got[0])
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, domain.StatusUnauthenticated, f.Current().Status)
}

// Cada entrega debe llevar sesión y estado del mismo Publish.
func TestFeed_ConcurrentPublishKeepsPairsTogether(t *testing.T) {
	f := NewFeed(domain.Snapshot{Status: domain.StatusUnauthenticated})

	var mu sync.Mutex
	var mismatches int
	check := func(s domain.Snapshot) {
		state := domain.Project(s)
		if state.IsAuthenticated != (state.User != nil) {
			mu.Lock()
			mismatches++
			mu.Unlock()
		}
	}
	defer f.Subscribe(check)()

	u := &domain.User{ID: "u1"}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.Publish(domain.Snapshot{Status: domain.StatusAuthenticated, Session: &domain.Session{User: u}})
		}()
		go func() {
			defer wg.Done()
			f.Publish(domain.Snapshot{Status: domain.StatusUnauthenticated})
			check(f.Current())
		}()
	}
	wg.Wait()

	assert.Zero(t, mismatches)
}
