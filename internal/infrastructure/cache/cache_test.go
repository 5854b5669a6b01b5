package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalGetSet(t *testing.T) {
	c := NewLocal()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("gen", []byte("1"), 0)
	value, ok := c.Get("gen")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), value)

	c.Set("short", []byte("x"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	_, ok = c.Get("short")
	assert.False(t, ok, "expired entries read as misses")
}

func TestExpiration(t *testing.T) {
	cases := []struct {
		ttl  time.Duration
		want int32
	}{
		{0, 0},
		{-time.Second, 0},
		{200 * time.Millisecond, 1},
		{5 * time.Minute, 300},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, expiration(tc.ttl), "ttl %s", tc.ttl)
	}
}
