package cache

import (
	"testing"
	"time"

	"github.com/LilVoxy/coursework_startups/analytics"
	"github.com/LilVoxy/coursework_startups/database"
)

func TestCacheHitAndExpiry(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	c := NewWithClock(6*time.Hour, clock)
	rows := []database.GroupTotal{{Key: "AI", Total: 100}}

	c.Set("top_industries", analytics.Filter{}, rows)

	got, ok := c.Get("top_industries", analytics.Filter{})
	if !ok || len(got) != 1 || got[0].Key != "AI" {
		t.Fatalf("ожидалось попадание в кэш, получено %v, %v", got, ok)
	}

	// За минуту до истечения срока запись еще жива
	now = now.Add(6*time.Hour - time.Minute)
	if _, ok := c.Get("top_industries", analytics.Filter{}); !ok {
		t.Error("запись истекла раньше срока")
	}

	// После истечения срока — промах
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("top_industries", analytics.Filter{}); ok {
		t.Error("просроченная запись вернулась из кэша")
	}
}

func TestCacheKeyedByQueryAndFilter(t *testing.T) {
	c := New(time.Hour)

	c.Set("top_industries", analytics.Filter{}, []database.GroupTotal{{Key: "AI"}})
	c.Set("top_countries", analytics.Filter{}, []database.GroupTotal{{Key: "US"}})

	industries, ok := c.Get("top_industries", analytics.Filter{})
	if !ok || industries[0].Key != "AI" {
		t.Errorf("top_industries: %v, %v", industries, ok)
	}
	countries, ok := c.Get("top_countries", analytics.Filter{})
	if !ok || countries[0].Key != "US" {
		t.Errorf("top_countries: %v, %v", countries, ok)
	}

	// Другой фильтр — другой ключ
	if _, ok := c.Get("top_industries", analytics.Filter{Countries: []string{"US"}}); ok {
		t.Error("результат вернулся по чужому фильтру")
	}
}

func TestCacheClear(t *testing.T) {
	c := New(time.Hour)

	c.Set("top_industries", analytics.Filter{}, []database.GroupTotal{{Key: "AI"}})
	c.Set("top_countries", analytics.Filter{}, []database.GroupTotal{{Key: "US"}})
	if c.Len() != 2 {
		t.Fatalf("ожидалось 2 записи, получено %d", c.Len())
	}

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("после очистки в кэше осталось %d записей", c.Len())
	}
	if _, ok := c.Get("top_industries", analytics.Filter{}); ok {
		t.Error("запись пережила очистку")
	}
}
