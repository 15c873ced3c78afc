// Package prefetch warms the weather cache ahead of user traffic.
package prefetch

import (
	"context"
	"time"

	"github.com/yunseo-dev/weatherdish/internal/log"
	"github.com/yunseo-dev/weatherdish/internal/station"
	"github.com/yunseo-dev/weatherdish/internal/weather"
)

// DefaultHorizonDays covers today plus the three selectable future days.
const DefaultHorizonDays = 4

// Prefetcher walks every registered station across a short day horizon and
// fills cache gaps from the forecast endpoint. Unlike the interactive path,
// it takes the nearest available forecast slot: a best-effort warm cache
// beats an empty one.
type Prefetcher struct {
	store   weather.Store
	client  weather.Fetcher
	horizon int
	now     func() time.Time
}

// New creates a Prefetcher. horizonDays of zero or less falls back to
// DefaultHorizonDays.
func New(store weather.Store, client weather.Fetcher, horizonDays int) *Prefetcher {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &Prefetcher{
		store:   store,
		client:  client,
		horizon: horizonDays,
		now:     func() time.Time { return time.Now().In(weather.KST) },
	}
}

// Stats summarizes one prefetch run.
type Stats struct {
	Fetched int
	Skipped int
	Failed  int
}

// Run performs one pass over all stations and days. Individual failures are
// logged and counted but never abort the remaining pairs; there is no
// transaction to roll back.
func (p *Prefetcher) Run(ctx context.Context) Stats {
	var stats Stats
	today := p.now()

	for _, st := range station.All() {
		for i := 0; i < p.horizon; i++ {
			day := today.AddDate(0, 0, i)

			cached, err := p.store.Get(st.Name, day)
			if err != nil {
				log.Warnf("prefetch: cache unreadable for %s/%s: %v",
					st.Name, day.Format("2006-01-02"), err)
			}
			if cached != nil {
				stats.Skipped++
				continue
			}

			obs, err := p.client.FetchNearest(ctx, st, day)
			if err != nil {
				stats.Failed++
				log.Warnf("prefetch: fetch failed for %s/%s: %v",
					st.Name, day.Format("2006-01-02"), err)
				continue
			}

			if err := p.store.Put(st.Name, day, obs); err != nil {
				stats.Failed++
				log.Warnf("prefetch: store failed for %s/%s: %v",
					st.Name, day.Format("2006-01-02"), err)
				continue
			}
			stats.Fetched++
		}
	}
	return stats
}
