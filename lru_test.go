package paperview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUBasic(t *testing.T) {
	lru := NewLRUCache(2)

	lru.Put("a", 1)
	lru.Put("b", 2)

	v, ok := lru.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// "b" is now least recently used and should be evicted.
	lru.Put("c", 3)

	_, ok = lru.Get("b")
	assert.False(t, ok)

	_, ok = lru.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, lru.Size())
}

func TestLRUUpdateExisting(t *testing.T) {
	lru := NewLRUCache(2)

	lru.Put("a", 1)
	lru.Put("a", 10)

	v, ok := lru.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, lru.Size())
}

func TestLRUDeleteAndClear(t *testing.T) {
	lru := NewLRUCache(4)

	lru.Put("a", 1)
	lru.Put("b", 2)
	lru.Delete("a")

	_, ok := lru.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, lru.Size())

	lru.Clear()
	assert.Equal(t, 0, lru.Size())
}
