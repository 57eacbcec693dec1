package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	k1 := Key("openai", "gpt-4o-mini", "hello")
	k2 := Key("openai", "gpt-4o-mini", "hello")
	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "contextcraft:v1:"))

	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.NotEqual(t, k1, Key("openai", "gpt-4o", "hello"))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	require.NoError(t, c.Set("k", []byte("v"), time.Minute))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)

	assert.Equal(t, Stats{Hits: 1, Misses: 2, Entries: 0}, c.Stats())
}

func TestMemoryCache_SetCopiesValue(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	buf := []byte("original")
	require.NoError(t, c.Set("k", buf, 0))
	copy(buf, "mutated!")

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "original", string(got))
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	require.NoError(t, c.Set("k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}
