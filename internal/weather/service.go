package weather

import (
	"context"
	"time"

	"github.com/yunseo-dev/weatherdish/internal/log"
	"github.com/yunseo-dev/weatherdish/internal/station"
)

// Store is the contract the file-backed cache must satisfy. The store owns
// the cache file; this package only goes through this interface. Get reports
// an ordinary miss as (nil, nil); an error means the backing file is
// unreadable.
type Store interface {
	Get(stationName string, day time.Time) (Observation, error)
	Put(stationName string, day time.Time, obs Observation) error
}

// Fetcher abstracts the KMA client for the service and the prefetcher.
type Fetcher interface {
	Fetch(ctx context.Context, st station.Station, day time.Time) (Observation, error)
	FetchNearest(ctx context.Context, st station.Station, day time.Time) (Observation, error)
}

// Service serves observations for (station, day) pairs, reading the cache
// first and falling back to a live fetch on a miss.
type Service struct {
	store  Store
	client Fetcher
}

// NewService creates a new Service.
func NewService(store Store, client Fetcher) *Service {
	return &Service{store: store, client: client}
}

// Observation returns the weather for a station and day, and whether it was
// served from the cache. A corrupt cache degrades to a live fetch: the error
// is logged and the file left as-is. Freshly fetched observations are cached
// before returning.
func (s *Service) Observation(ctx context.Context, st station.Station, day time.Time) (Observation, bool, error) {
	obs, err := s.store.Get(st.Name, day)
	if err != nil {
		// Corruption degrades to an uncached miss; the file stays as-is.
		log.Warnf("weather cache unreadable, fetching live: %v", err)
	} else if obs != nil {
		return obs, true, nil
	}

	obs, err = s.client.Fetch(ctx, st, day)
	if err != nil {
		return nil, false, err
	}

	if putErr := s.store.Put(st.Name, day, obs); putErr != nil {
		log.Warnf("failed to cache weather for %s/%s: %v", st.Name, day.Format("2006-01-02"), putErr)
	}
	return obs, false, nil
}

// Summary returns the defaulted scalar view for a station and day. It never
// fails: fetch errors are logged and replaced by the neutral defaults, so the
// recommendation flow always proceeds.
func (s *Service) Summary(ctx context.Context, st station.Station, day time.Time) (Summary, bool) {
	obs, cached, err := s.Observation(ctx, st, day)
	if err != nil {
		log.Warnf("weather unavailable for %s/%s, using defaults: %v",
			st.Name, day.Format("2006-01-02"), err)
		return DefaultSummary(), false
	}
	return Summarize(obs), cached
}
