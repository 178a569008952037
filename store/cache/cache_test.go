package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("k", 42, 0)
	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 42, v)

	c.Delete("k")
	_, ok = c.Get("k")
	require.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()

	c.Set("k", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("k")
	require.False(t, ok)
}

func TestMaxItemsEvicts(t *testing.T) {
	evicted := make(chan string, 1)
	c := New(Config{
		DefaultTTL:      time.Minute,
		CleanupInterval: time.Minute,
		MaxItems:        2,
		OnEviction:      func(key string, _ any) { evicted <- key },
	})
	defer c.Close()

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 2*time.Minute)
	c.Set("c", 3, 3*time.Minute)

	require.Equal(t, 2, c.Len())
	// The entry closest to expiry goes first.
	require.Equal(t, "a", <-evicted)
}

func TestKey(t *testing.T) {
	require.Equal(t, "user:42", Key("user", int32(42)))
	require.Equal(t, "a:b:c", Key("a", "b", "c"))
}
