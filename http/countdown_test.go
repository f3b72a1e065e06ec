package http

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeepAliveStopsBeforeReturning(t *testing.T) {
	var pings atomic.Int64
	var inPing atomic.Bool
	stop := startKeepAlive(time.Millisecond, func() {
		inPing.Store(true)
		time.Sleep(5 * time.Millisecond)
		pings.Add(1)
		inPing.Store(false)
	})

	assert.Eventually(t, func() bool { return pings.Load() >= 2 }, time.Second, time.Millisecond)
	assert.Eventually(t, inPing.Load, time.Second, 100*time.Microsecond)

	stop()
	assert.False(t, inPing.Load(), "stop returned while a ping was still writing")
	after := pings.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, pings.Load())
}
