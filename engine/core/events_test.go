package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingListener struct {
	calls int
	last  EventContext
}

func (c *countingListener) handle(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool {
	c.calls++
	c.last = data
	return true
}

func (c *countingListener) observe(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool {
	c.calls++
	return false
}

func TestEventRegisterFireUnregister(t *testing.T) {
	EventInitialize()
	t.Cleanup(func() { EventShutdown() })

	listener := &countingListener{}
	require.True(t, EventRegister(EVENT_CODE_RESIZED, listener, listener.handle))

	var data EventContext
	data.Data.U32[0] = 1280
	data.Data.U32[1] = 720

	assert.True(t, EventFire(EVENT_CODE_RESIZED, nil, data))
	assert.Equal(t, 1, listener.calls)
	assert.Equal(t, uint32(1280), listener.last.Data.U32[0])
	assert.Equal(t, uint32(720), listener.last.Data.U32[1])

	require.True(t, EventUnregister(EVENT_CODE_RESIZED, listener, listener.handle))
	assert.False(t, EventFire(EVENT_CODE_RESIZED, nil, data))
	assert.Equal(t, 1, listener.calls)
}

func TestEventDuplicateRegistrationRejected(t *testing.T) {
	EventInitialize()
	t.Cleanup(func() { EventShutdown() })

	listener := &countingListener{}
	require.True(t, EventRegister(EVENT_CODE_APPLICATION_QUIT, listener, listener.handle))
	assert.False(t, EventRegister(EVENT_CODE_APPLICATION_QUIT, listener, listener.handle))
}

func TestEventHandledStopsPropagation(t *testing.T) {
	EventInitialize()
	t.Cleanup(func() { EventShutdown() })

	first := &countingListener{}
	second := &countingListener{}
	require.True(t, EventRegister(EVENT_CODE_RESIZED, first, first.handle))
	require.True(t, EventRegister(EVENT_CODE_RESIZED, second, second.handle))

	assert.True(t, EventFire(EVENT_CODE_RESIZED, nil, EventContext{}))
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
}

func TestEventUnhandledReachesAllListeners(t *testing.T) {
	EventInitialize()
	t.Cleanup(func() { EventShutdown() })

	first := &countingListener{}
	second := &countingListener{}
	require.True(t, EventRegister(EVENT_CODE_RESIZED, first, first.observe))
	require.True(t, EventRegister(EVENT_CODE_RESIZED, second, second.observe))

	assert.False(t, EventFire(EVENT_CODE_RESIZED, nil, EventContext{}))
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestEventUnregisterUnknownListener(t *testing.T) {
	EventInitialize()
	t.Cleanup(func() { EventShutdown() })

	listener := &countingListener{}
	assert.False(t, EventUnregister(EVENT_CODE_RESIZED, listener, listener.handle))
}
