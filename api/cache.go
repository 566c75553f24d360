package api

import "sync"

// Tag labels a cached query result for targeted invalidation.
type Tag struct {
	Type string
	ID   string
}

// ListID is the sentinel tag ID covering an entity's collection view.
const ListID = "LIST"

// ListTag returns the collection tag for a tag type.
func ListTag(tagType string) Tag {
	return Tag{Type: tagType, ID: ListID}
}

type cacheEntry struct {
	value any
	tags  []Tag
	stale bool
}

// TagCache holds query results keyed by request fingerprint, each labelled
// with the tags that invalidate it. Mutations never remove entries, they
// only mark them stale; the next lookup then misses and refetches.
type TagCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

func NewTagCache() *TagCache {
	return &TagCache{entries: make(map[string]*cacheEntry)}
}

// Register stores a result under key with its tag set, replacing any
// previous entry for the same key.
func (c *TagCache) Register(key string, value any, tags ...Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{value: value, tags: tags}
}

// Lookup returns the cached value for key, missing when absent or stale.
func (c *TagCache) Lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	return e.value, true
}

// Invalidate marks every entry carrying any of the given tags as stale and
// reports how many entries were affected.
func (c *TagCache) Invalidate(tags ...Tag) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	affected := 0
	for _, e := range c.entries {
		if e.stale {
			continue
		}
		if hasAnyTag(e.tags, tags) {
			e.stale = true
			affected++
		}
	}
	return affected
}

// Tags returns the tag set registered under key, nil when absent.
func (c *TagCache) Tags(key string) []Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	out := make([]Tag, len(e.tags))
	copy(out, e.tags)
	return out
}

// Reset drops all entries.
func (c *TagCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

func hasAnyTag(have, want []Tag) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
