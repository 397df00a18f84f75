package cache

import (
	"context"
	"sync"
	"time"

	appcashier "github.com/hotelops/backend/internal/application/cashier"
)

type monthKey struct {
	year, month int
}

type reportEntry struct {
	report    *appcashier.MonthlyReport
	expiresAt time.Time
}

// InMemoryReportCache implements ReportCache with a process-local map.
// It suits single-instance deployments and development; invalidations are
// not shared between processes.
type InMemoryReportCache struct {
	mu          sync.RWMutex
	entries     map[monthKey]reportEntry
	generations map[monthKey]int64
	now         func() time.Time
}

// NewInMemoryReportCache creates an empty in-memory cache
func NewInMemoryReportCache() *InMemoryReportCache {
	return &InMemoryReportCache{
		entries:     make(map[monthKey]reportEntry),
		generations: make(map[monthKey]int64),
		now:         time.Now,
	}
}

// GetMonthly implements ReportCache. Expired entries are dropped on read.
func (c *InMemoryReportCache) GetMonthly(_ context.Context, year, month int) (*appcashier.MonthlyReport, bool, error) {
	k := monthKey{year, month}
	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.entries[k]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, k)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.report, true, nil
}

// MonthGeneration implements ReportCache
func (c *InMemoryReportCache) MonthGeneration(_ context.Context, year, month int) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[monthKey{year, month}], nil
}

// SetMonthly implements ReportCache
func (c *InMemoryReportCache) SetMonthly(_ context.Context, report *appcashier.MonthlyReport, generation int64, ttl time.Duration) (bool, error) {
	k := monthKey{report.Year, report.Month}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[k] != generation {
		return false, nil
	}
	c.entries[k] = reportEntry{
		report:    report,
		expiresAt: c.now().Add(ttl),
	}
	return true, nil
}

// InvalidateMonth implements ReportCache
func (c *InMemoryReportCache) InvalidateMonth(_ context.Context, year, month int) error {
	k := monthKey{year, month}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, k)
	c.generations[k]++
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *InMemoryReportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ appcashier.ReportCache = (*InMemoryReportCache)(nil)
