package service

import (
	"testing"

	"juansecalvinio/storefront-auth/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserService_GetLoggedInUser(t *testing.T) {
	svc := NewUserService(zap.NewNop())
	u := &domain.User{ID: "u1", Name: "Ana"}

	t.Run("authenticated", func(t *testing.T) {
		feed := &fakeFeed{current: domain.Snapshot{Status: domain.StatusAuthenticated, Session: &domain.Session{User: u}}}
		got, err := svc.GetLoggedInUser(feed)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("loading with stale user", func(t *testing.T) {
		feed := &fakeFeed{current: domain.Snapshot{Status: domain.StatusLoading, Session: &domain.Session{User: u}}}
		_, err := svc.GetLoggedInUser(feed)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("authenticated without user", func(t *testing.T) {
		feed := &fakeFeed{current: domain.Snapshot{Status: domain.StatusAuthenticated}}
		_, err := svc.GetLoggedInUser(feed)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		feed := &fakeFeed{current: domain.Snapshot{Status: domain.StatusUnauthenticated}}
		_, err := svc.GetLoggedInUser(feed)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})
}

func TestUserService_AuthState(t *testing.T) {
	svc := NewUserService(nil)
	feed := &fakeFeed{current: domain.Snapshot{Status: domain.StatusLoading}}
	assert.Equal(t, domain.AuthState{IsLoading: true}, svc.AuthState(feed))
}

func TestUserService_Watch(t *testing.T) {
	svc := NewUserService(nil)
	feed := &fakeFeed{}
	u := &domain.User{ID: "u1"}

	var got []domain.AuthState
	cancel := svc.Watch(feed, func(s domain.AuthState) { got = append(got, s) })
	feed.publish(domain.Snapshot{Status: domain.StatusAuthenticated, Session: &domain.Session{User: u}})
	cancel()
	feed.publish(domain.Snapshot{Status: domain.StatusUnauthenticated})

	require.Len(t, got, 1)
	assert.Equal(t, domain.AuthState{User: u, IsAuthenticated: true}, got[0])
}
