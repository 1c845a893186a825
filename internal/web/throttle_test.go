package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThrottleDisabled(t *testing.T) {
	th := newThrottle(0, 0)
	assert.Nil(t, th)
	for i := 0; i < 100; i++ {
		assert.True(t, th.allow("1.2.3.4"))
	}
}

func TestThrottlePerKey(t *testing.T) {
	th := newThrottle(0.001, 2)

	assert.True(t, th.allow("a"))
	assert.True(t, th.allow("a"))
	assert.False(t, th.allow("a"))

	assert.True(t, th.allow("b"), "other clients keep their own budget")
}

func TestThrottleMinimumBurst(t *testing.T) {
	th := newThrottle(0.001, 0)

	assert.True(t, th.allow("a"))
	assert.False(t, th.allow("a"))
}
