package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/pfrederiksen/award-shares/internal/stats"
)

type teamResult struct {
	table *stats.TeamSeason
	err   error
}

// teamCache fetches each (league, year) team table once per run. Concurrent callers
// for the same key share one fetch. Failures are remembered too, except
// cancellations.
type teamCache struct {
	src   TeamSource
	group singleflight.Group

	mu     sync.Mutex
	tables map[string]teamResult
}

func newTeamCache(src TeamSource) *teamCache {
	return &teamCache{src: src, tables: make(map[string]teamResult)}
}

func (c *teamCache) get(ctx context.Context, league string, year int) (*stats.TeamSeason, error) {
	key := fmt.Sprintf("%s/%d", strings.ToUpper(league), year)

	c.mu.Lock()
	res, ok := c.tables[key]
	c.mu.Unlock()
	if ok {
		return res.table, res.err
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		res, ok := c.tables[key]
		c.mu.Unlock()
		if ok {
			return res.table, res.err
		}

		t, err := c.src.TeamSeason(ctx, league, year)
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return nil, err
		}
		c.mu.Lock()
		c.tables[key] = teamResult{table: t, err: err}
		c.mu.Unlock()
		return t, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*stats.TeamSeason), nil
}

// size returns the number of cached tables.
func (c *teamCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tables)
}
