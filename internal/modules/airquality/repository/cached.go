package repository

import (
	"context"
	"sync"

	"airquality-server/internal/modules/airquality/types"
)

// Cached keeps the first successful GetReadings result of next. The dataset is
// read-only while the server runs, so it is never refreshed.
type Cached struct {
	next ReadingRepository

	mu       sync.Mutex
	readings []types.Reading
	loaded   bool
}

func NewCached(next ReadingRepository) *Cached {
	return &Cached{next: next}
}

func (c *Cached) GetReadings(ctx context.Context) ([]types.Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.readings, nil
	}
	readings, err := c.next.GetReadings(ctx)
	if err != nil {
		return nil, err
	}
	c.readings, c.loaded = readings, true
	return readings, nil
}

func (c *Cached) GetStations(ctx context.Context) ([]types.Station, error) {
	return c.next.GetStations(ctx)
}

func (c *Cached) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}
