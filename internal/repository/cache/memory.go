package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nearby-places/internal/domain/repository"
)

// memoryCache - потокобезопасный LRU-кеш с TTL на запись.
// Используется, когда Redis не настроен.
type memoryCache struct {
	clock      clockwork.Clock
	maxEntries int

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time // zero - без срока
	prev      *entry
	next      *entry
}

// NewMemoryCache создает in-memory кеш. maxEntries <= 0 означает без ограничения.
func NewMemoryCache(clock clockwork.Clock, maxEntries int) repository.CacheRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &memoryCache{
		clock:      clock,
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lookupLocked(key)
	if !ok {
		return nil, nil
	}
	c.moveToFront(e)
	return append([]byte(nil), e.value...), nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.clock.Now().Add(ttl)
	}
	value = append([]byte(nil), value...)

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return nil
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.evictTail()
	}
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.removeEntry(e)
	}
	return nil
}

func (c *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.lookupLocked(key)
	return ok, nil
}

// lookupLocked возвращает живую запись, попутно удаляя просроченную
func (c *memoryCache) lookupLocked(key string) (*entry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !c.clock.Now().Before(e.expiresAt) {
		c.removeEntry(e)
		return nil, false
	}
	return e, true
}

func (c *memoryCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *memoryCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *memoryCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *memoryCache) removeEntry(e *entry) {
	delete(c.entries, e.key)
	c.unlink(e)
}

func (c *memoryCache) evictTail() {
	if c.tail == nil {
		return
	}
	c.removeEntry(c.tail)
}
