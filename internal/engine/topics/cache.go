package topics

import (
	"container/list"

	textTypes "github.com/quillflow/QuillScope-Engine/pkg/types/text"
)

// cacheEntry is one cached keyword list, keyed by text fingerprint.
type cacheEntry struct {
	key      string
	keywords []textTypes.Keyword
}

// topicCache is a bounded LRU map from text fingerprint to extracted
// keywords: a doubly linked list ordered most-recently-used first, plus a
// map for O(1) lookup.  Size never exceeds capacity after an insert.  It is
// not safe for concurrent use; the Extractor serializes access.
type topicCache struct {
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

func newTopicCache(capacity int) *topicCache {
	return &topicCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// get returns the cached keywords and promotes the entry to
// most-recently-used.
func (c *topicCache) get(key string) ([]textTypes.Keyword, bool) {
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).keywords, true
}

// put inserts or refreshes an entry, then evicts from the
// least-recently-used end until size fits capacity.
func (c *topicCache) put(key string, keywords []textTypes.Keyword) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).keywords = keywords
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, keywords: keywords})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *topicCache) len() int {
	return c.order.Len()
}

func (c *topicCache) reset() {
	c.order.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
}
