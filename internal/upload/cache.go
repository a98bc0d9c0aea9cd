package upload

import "sync"

// Entry is the remote location recorded for one content id.
type Entry struct {
	ContentID ContentID
	URL       string
	MediaID   string
}

// Cache remembers completed uploads for the lifetime of a client. Entries
// are written once and never evicted.
type Cache struct {
	mu      sync.RWMutex
	entries map[ContentID]Entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[ContentID]Entry)}
}

// Lookup returns the entry stored for id.
func (c *Cache) Lookup(id ContentID) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	return entry, ok
}

// InsertIfAbsent stores entry unless id is already present. It returns the
// stored entry and whether this call inserted it; the first writer wins.
func (c *Cache) InsertIfAbsent(id ContentID, entry Entry) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[id]; ok {
		return existing, false
	}
	entry.ContentID = id
	c.entries[id] = entry
	return entry, true
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
