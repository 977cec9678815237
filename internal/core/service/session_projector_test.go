package service

import (
	"testing"

	"juansecalvinio/storefront-auth/internal/core/domain"
	"juansecalvinio/storefront-auth/internal/ports/secondary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeFeed struct {
	current domain.Snapshot
	subs    []func(domain.Snapshot)
	reads   int
}

func (f *fakeFeed) Current() domain.Snapshot {
	f.reads++
	return f.current
}

func (f *fakeFeed) Subscribe(fn func(domain.Snapshot)) func() {
	f.subs = append(f.subs, fn)
	idx := len(f.subs) - 1
	return func() { f.subs[idx] = nil }
}

func (f *fakeFeed) publish(s domain.Snapshot) {
	f.current = s
	for _, fn := range f.subs {
		if fn != nil {
			fn(s)
		}
	}
}

func TestSessionProjector_StateReadsSourceEveryCall(t *testing.T) {
	feed := &fakeFeed{current: domain.Snapshot{Status: domain.StatusLoading}}
	p := NewSessionProjector(feed, nil)

	assert.Equal(t, domain.AuthState{IsLoading: true}, p.State())

	u := &domain.User{ID: "u1"}
	feed.current = domain.Snapshot{Status: domain.StatusAuthenticated, Session: &domain.Session{User: u}}
	assert.Equal(t, domain.AuthState{User: u, IsAuthenticated: true}, p.State())

	feed.current = domain.Snapshot{Status: domain.StatusUnauthenticated}
	assert.Equal(t, domain.AuthState{}, p.State())

	assert.Equal(t, 3, feed.reads)
}

func TestSessionProjector_AcceptsSourceFunc(t *testing.T) {
	src := secondary.SessionSourceFunc(func() domain.Snapshot {
		return domain.Snapshot{Status: domain.StatusUnauthenticated}
	})
	assert.Equal(t, domain.AuthState{}, NewSessionProjector(src, zap.NewNop()).State())
}

func TestSessionProjector_WatchProjectsEachSnapshot(t *testing.T) {
	feed := &fakeFeed{}
	p := NewSessionProjector(feed, nil)

	var got []domain.AuthState
	cancel := p.Watch(feed, func(s domain.AuthState) { got = append(got, s) })

	u := &domain.User{ID: "u1"}
	feed.publish(domain.Snapshot{Status: domain.StatusLoading})
	feed.publish(domain.Snapshot{Status: domain.StatusAuthenticated, Session: &domain.Session{User: u}})
	cancel()
	feed.publish(domain.Snapshot{Status: domain.StatusUnauthenticated})

	require.Len(t, got, 2)
	assert.Equal(t, domain.AuthState{IsLoading: true}, got[0])
	assert.Equal(t, domain.AuthState{User: u, IsAuthenticated: true}, got[1])
}

func TestSessionProjector_WarnsOnInconsistentProvider(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	feed := &fakeFeed{current: domain.Snapshot{Status: domain.StatusAuthenticated}}

	state := NewSessionProjector(feed, zap.New(core)).State()

	assert.True(t, state.IsAuthenticated)
	assert.Nil(t, state.User)
	assert.Equal(t, 1, logs.FilterMessage("session provider reports authenticated without user").Len())
}
