package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagCacheRegisterAndLookup(t *testing.T) {
	cache := NewTagCache()

	_, ok := cache.Lookup("lead:list:page=1")
	assert.False(t, ok)

	cache.Register("lead:list:page=1", "payload", ListTag("Lead"), Tag{Type: "Lead", ID: "1"})
	value, ok := cache.Lookup("lead:list:page=1")
	assert.True(t, ok)
	assert.Equal(t, "payload", value)
	assert.Len(t, cache.Tags("lead:list:page=1"), 2)
}

func TestTagCacheInvalidateByListTag(t *testing.T) {
	cache := NewTagCache()
	cache.Register("lead:list:page=1", "p1", ListTag("Lead"), Tag{Type: "Lead", ID: "1"})
	cache.Register("lead:list:page=2", "p2", ListTag("Lead"), Tag{Type: "Lead", ID: "2"})
	cache.Register("task:list:page=1", "t1", ListTag("Task"))

	affected := cache.Invalidate(ListTag("Lead"))
	assert.Equal(t, 2, affected)

	_, ok := cache.Lookup("lead:list:page=1")
	assert.False(t, ok)
	_, ok = cache.Lookup("lead:list:page=2")
	assert.False(t, ok)
	_, ok = cache.Lookup("task:list:page=1")
	assert.True(t, ok, "other tag types stay fresh")
}

func TestTagCacheInvalidateByItemTag(t *testing.T) {
	cache := NewTagCache()
	cache.Register("lead:id:7", "record", Tag{Type: "Lead", ID: "7"})
	cache.Register("lead:id:8", "record", Tag{Type: "Lead", ID: "8"})

	affected := cache.Invalidate(Tag{Type: "Lead", ID: "7"})
	assert.Equal(t, 1, affected)

	_, ok := cache.Lookup("lead:id:7")
	assert.False(t, ok)
	_, ok = cache.Lookup("lead:id:8")
	assert.True(t, ok)
}

func TestTagCacheInvalidateStaleEntryCountsOnce(t *testing.T) {
	cache := NewTagCache()
	cache.Register("lead:list:page=1", "p1", ListTag("Lead"))

	assert.Equal(t, 1, cache.Invalidate(ListTag("Lead")))
	assert.Equal(t, 0, cache.Invalidate(ListTag("Lead")), "already-stale entries are not re-counted")
}

func TestTagCacheRegisterReplacesStaleEntry(t *testing.T) {
	cache := NewTagCache()
	cache.Register("lead:list:page=1", "old", ListTag("Lead"))
	cache.Invalidate(ListTag("Lead"))

	cache.Register("lead:list:page=1", "new", ListTag("Lead"))
	value, ok := cache.Lookup("lead:list:page=1")
	assert.True(t, ok)
	assert.Equal(t, "new", value)
}

func TestTagCacheReset(t *testing.T) {
	cache := NewTagCache()
	cache.Register("lead:list:page=1", "p1", ListTag("Lead"))
	cache.Reset()

	_, ok := cache.Lookup("lead:list:page=1")
	assert.False(t, ok)
	assert.Nil(t, cache.Tags("lead:list:page=1"))
}
