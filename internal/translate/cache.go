package translate

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// memoCache remembers successful translations for the lifetime of one run,
// so identical texts (the same title surfacing from two feeds) cost one
// provider call instead of two.
type memoCache struct {
	mu    sync.RWMutex
	items map[string]string
}

func newMemoCache() *memoCache {
	return &memoCache{items: make(map[string]string)}
}

func (c *memoCache) key(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:16])
}

func (c *memoCache) get(text string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[c.key(text)]
	return v, ok
}

func (c *memoCache) set(text, translated string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[c.key(text)] = translated
}
