package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_StartBeforeInitialize(t *testing.T) {
	manager := NewSessionManager(nil, nil)

	session, err := manager.StartSession("early", SessionOptions{Headless: true})
	require.Error(t, err)
	assert.Nil(t, session)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestSessionManager_MaxSessions(t *testing.T) {
	manager := NewSessionManager(nil, nil)
	manager.SetMaxSessions(0)

	_, err := manager.StartSession("overflow", SessionOptions{Headless: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum number of sessions")
}

func TestSessionManager_UnknownSession(t *testing.T) {
	manager := NewSessionManager(nil, nil)

	_, err := manager.GetSession("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = manager.CloseSession("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSessionManager_EmptyState(t *testing.T) {
	manager := NewSessionManager(nil, nil)

	assert.False(t, manager.HasSessions())
	assert.Empty(t, manager.ListSessions())
	assert.NoError(t, manager.CleanupIdleSessions())
	assert.NoError(t, manager.CloseAll())
	assert.NoError(t, manager.Shutdown())
}

func TestSessionManager_IdleTimeout(t *testing.T) {
	manager := NewSessionManager(nil, nil)
	manager.SetIdleTimeout(42 * time.Second)

	assert.Equal(t, 42*time.Second, manager.idleTimeout)
}
