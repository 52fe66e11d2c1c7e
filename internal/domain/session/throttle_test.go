package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottleCoalescesRepeatsWithinWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	th := newThrottle(500*time.Millisecond, func() time.Time { return now })

	assert.True(t, th.allow("/a"))
	now = now.Add(100 * time.Millisecond)
	assert.False(t, th.allow("/a"))
	now = now.Add(450 * time.Millisecond)
	assert.True(t, th.allow("/a"))
}

func TestThrottleDifferentKeyPasses(t *testing.T) {
	now := time.Unix(1000, 0)
	th := newThrottle(500*time.Millisecond, func() time.Time { return now })

	assert.True(t, th.allow("/a"))
	assert.True(t, th.allow("/b"))
	assert.True(t, th.allow("/a"))
	assert.False(t, th.allow("/a"))
}

func TestThrottleDisabled(t *testing.T) {
	th := newThrottle(0, time.Now)
	for i := 0; i < 5; i++ {
		assert.True(t, th.allow("/a"))
	}
}
