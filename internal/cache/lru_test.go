package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[int64, string](2, 0)
	c.Set(1, "a")
	c.Set(2, "b")

	_, ok := c.Get(1) // 1 becomes most recent
	assert.True(t, ok)

	c.Set(3, "c")
	assert.Equal(t, 2, c.Size())

	_, ok = c.Get(2)
	assert.False(t, ok, "least recently used entry is evicted")
	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestLRU_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[string, int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("x", 1)
	c.Set("y", 2)

	now = now.Add(30 * time.Second)
	c.Set("y", 3)

	now = now.Add(45 * time.Second)
	_, ok := c.Get("x")
	assert.False(t, ok)

	v, ok := c.Get("y")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	now = now.Add(time.Hour)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRU_Delete(t *testing.T) {
	c := NewLRU[int64, string](4, 0)
	c.Set(1, "a")
	c.Delete(1)
	c.Delete(99)
	assert.Equal(t, 0, c.Size())
}
