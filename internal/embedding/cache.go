package embedding

import (
	"container/list"
	"sync"
)

// EmbeddingCache is a fixed-capacity LRU of embeddings keyed by the embedded text.
// Vectors are copied in and out, so callers may modify what they pass or receive.
type EmbeddingCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front is most recently used
}

type cacheEntry struct {
	text   string
	vector []float32
}

// NewEmbeddingCache creates a cache holding at most capacity embeddings (at least one).
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	if capacity < 1 {
		capacity = 1
	}
	return &EmbeddingCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns a copy of the embedding cached for text.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[text]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return cloneVector(elem.Value.(*cacheEntry).vector), true
}

// Set caches a copy of vector for text, evicting the least recently used entry when full.
func (c *EmbeddingCache) Set(text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[text]; ok {
		elem.Value.(*cacheEntry).vector = cloneVector(vector)
		c.order.MoveToFront(elem)
		return
	}
	c.entries[text] = c.order.PushFront(&cacheEntry{text: text, vector: cloneVector(vector)})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).text)
	}
}

// Len returns the number of cached embeddings.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func cloneVector(v []float32) []float32 {
	return append([]float32(nil), v...)
}
