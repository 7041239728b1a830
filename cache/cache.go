package cache

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/LilVoxy/coursework_startups/analytics"
	"github.com/LilVoxy/coursework_startups/database"
)

// Clock возвращает текущее время; подменяется в тестах
type Clock func() time.Time

// entry хранит результат запроса и момент истечения его срока
type entry struct {
	rows    []database.GroupTotal
	expires time.Time
}

// QueryCache кэширует результаты дорогих сгруппированных запросов
// на фиксированное время. Ключ — пара (имя запроса, хэш фильтра).
// Инвалидация только по времени, плюс явная операция полной очистки.
// Безопасен для конкурентных читателей
type QueryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     Clock
	entries map[uint64]entry
}

// New создает кэш с указанным временем жизни записей
func New(ttl time.Duration) *QueryCache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock создает кэш с подменяемыми часами
func NewWithClock(ttl time.Duration, clock Clock) *QueryCache {
	return &QueryCache{
		ttl:     ttl,
		now:     clock,
		entries: make(map[uint64]entry),
	}
}

// Get возвращает закэшированный результат запроса, если срок его
// жизни еще не истек
func (c *QueryCache) Get(query string, filter analytics.Filter) ([]database.GroupTotal, bool) {
	key := cacheKey(query, filter)

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		return nil, false
	}

	return e.rows, true
}

// Set сохраняет результат запроса со сроком жизни ttl от текущего момента
func (c *QueryCache) Set(query string, filter analytics.Filter, rows []database.GroupTotal) {
	key := cacheKey(query, filter)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		rows:    rows,
		expires: c.now().Add(c.ttl),
	}
}

// Clear полностью очищает кэш — при следующем обращении данные
// будут перечитаны из хранилища
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[uint64]entry)
}

// Len возвращает число записей в кэше (включая просроченные)
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// cacheKey хэширует имя запроса и каноническое представление фильтра
func cacheKey(query string, filter analytics.Filter) uint64 {
	h := fnv.New64a()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(filter.Canonical()))
	return h.Sum64()
}
