package cache

import (
	"container/list"
	"encoding/json"
)

// Export serializes the full entry set, least recently used first, so that
// importing in order reconstructs the recency order. The snapshot shape is
// opaque and versionless: sessionId, payload, cachedAt, expiresAt per entry.
func (c *SessionCache) Export() ([]byte, error) {
	c.mu.Lock()
	entries := make([]Entry, 0, len(c.entries))
	for el := c.lru.Back(); el != nil; el = el.Prev() {
		entries = append(entries, el.Value.(*cachedItem).entry)
	}
	c.mu.Unlock()

	return json.Marshal(entries)
}

// Import restores a snapshot produced by Export, replacing current
// contents. Entries already past their deadline are dropped; the size
// bound still holds, evicting the least recently used on overflow.
func (c *SessionCache) Import(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.lru.Init()
	c.bytes = 0

	now := c.now()
	for _, entry := range entries {
		if entry.Expired(now) {
			continue
		}
		if _, dup := c.entries[entry.SessionID]; dup {
			continue
		}
		for len(c.entries) >= c.maxSize {
			oldest := c.lru.Back()
			if oldest == nil {
				break
			}
			c.removeElement(oldest, false)
		}
		size := approxSize(entry.Payload)
		el := c.lru.PushFront(&cachedItem{entry: entry, size: size})
		c.entries[entry.SessionID] = el
		c.bytes += size
	}
	return nil
}
