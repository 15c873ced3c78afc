package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yunseo-dev/weatherdish/internal/station"
)

// KST is the zone all KMA base and forecast times are expressed in.
var KST = time.FixedZone("KST", 9*60*60)

const (
	defaultBaseURL = "http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0"

	nowcastEndpoint  = "/getUltraSrtNcst"
	forecastEndpoint = "/getVilageFcst"

	// forecastBaseTime is the daily forecast run the client reads from.
	forecastBaseTime = "0500"

	// forecastSlotHour is the representative afternoon slot picked out of
	// the multi-timestamp forecast table.
	forecastSlotHour = 15

	// nowcastLag compensates for the upstream publication delay of the
	// nowcast: the base time is now minus this lag, truncated to the hour.
	nowcastLag = 40 * time.Minute
)

// Client calls the KMA VilageFcstInfoService endpoints and normalizes both
// response shapes into an Observation. It performs a single attempt per call;
// retry policy belongs to the caller.
type Client struct {
	serviceKey string
	baseURL    string
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
	now        func() time.Time
}

// NewClient creates a KMA client using the shared HTTP client and service
// credential.
func NewClient(client *http.Client, serviceKey string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kma",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		serviceKey: serviceKey,
		baseURL:    defaultBaseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      0,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
		now:     func() time.Time { return time.Now().In(KST) },
	}
}

// Fetch returns the observation for a station and calendar day. The current
// day is served from the nowcast endpoint; future days from the 05:00
// forecast run, filtered to the exact 15:00 slot. A forecast table without
// that exact slot yields a KindNoData error rather than a guessed neighbour.
func (c *Client) Fetch(ctx context.Context, st station.Station, day time.Time) (Observation, error) {
	day = day.In(KST)
	if sameDay(day, c.now()) {
		return c.fetchNowcast(ctx, st)
	}
	return c.fetchForecast(ctx, st, day, true)
}

// FetchNearest is the batch-path variant of Fetch: it always reads the
// forecast table and selects the slot closest to 15:00 on the target day by
// absolute time difference instead of requiring an exact match.
func (c *Client) FetchNearest(ctx context.Context, st station.Station, day time.Time) (Observation, error) {
	return c.fetchForecast(ctx, st, day.In(KST), false)
}

func (c *Client) fetchNowcast(ctx context.Context, st station.Station) (Observation, error) {
	base := c.now().Add(-nowcastLag)
	items, err := c.request(ctx, nowcastEndpoint, st, base.Format("20060102"), base.Format("15")+"00")
	if err != nil {
		return nil, err
	}

	obs := make(Observation)
	for _, it := range items {
		if it.ObsrValue == "" {
			continue
		}
		if v, ok := parseValue(it.ObsrValue); ok {
			obs[it.Category] = v
		}
	}
	if len(obs) == 0 {
		return nil, noDataError("nowcast for %s returned no usable categories", st.Name)
	}
	return obs, nil
}

func (c *Client) fetchForecast(ctx context.Context, st station.Station, day time.Time, exact bool) (Observation, error) {
	items, err := c.request(ctx, forecastEndpoint, st, c.now().Format("20060102"), forecastBaseTime)
	if err != nil {
		return nil, err
	}

	// Group rows by forecast timestamp; each slot carries one value per
	// category.
	slots := make(map[string]Observation)
	for _, it := range items {
		if it.FcstValue == "" || it.FcstDate == "" || it.FcstTime == "" {
			continue
		}
		key := it.FcstDate + it.FcstTime
		if _, ok := slots[key]; !ok {
			slots[key] = make(Observation)
		}
		if v, ok := parseValue(it.FcstValue); ok {
			slots[key][it.Category] = v
		}
	}
	if len(slots) == 0 {
		return nil, noDataError("forecast for %s returned no usable rows", st.Name)
	}

	targetKey := fmt.Sprintf("%s%02d00", day.Format("20060102"), forecastSlotHour)
	if exact {
		obs, ok := slots[targetKey]
		if !ok || len(obs) == 0 {
			return nil, noDataError("forecast for %s has no %02d:00 slot on %s",
				st.Name, forecastSlotHour, day.Format("2006-01-02"))
		}
		return obs, nil
	}

	target, err := time.ParseInLocation("200601021504", targetKey, KST)
	if err != nil {
		return nil, parseError(err)
	}

	keys := make([]string, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bestKey := ""
	var bestDiff time.Duration
	for _, k := range keys {
		ts, err := time.ParseInLocation("200601021504", k, KST)
		if err != nil {
			continue
		}
		diff := target.Sub(ts)
		if diff < 0 {
			diff = -diff
		}
		if bestKey == "" || diff < bestDiff {
			bestKey = k
			bestDiff = diff
		}
	}
	if bestKey == "" {
		return nil, noDataError("forecast for %s has no parseable slots", st.Name)
	}
	return slots[bestKey], nil
}

// kmaItem is one row of either endpoint shape. The nowcast fills ObsrValue;
// the forecast fills FcstDate/FcstTime/FcstValue.
type kmaItem struct {
	BaseDate  string `json:"baseDate"`
	BaseTime  string `json:"baseTime"`
	Category  string `json:"category"`
	FcstDate  string `json:"fcstDate"`
	FcstTime  string `json:"fcstTime"`
	FcstValue string `json:"fcstValue"`
	ObsrValue string `json:"obsrValue"`
	Nx        int    `json:"nx"`
	Ny        int    `json:"ny"`
}

// kmaResponse is the shared JSON envelope of the KMA endpoints.
type kmaResponse struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items struct {
				Item []kmaItem `json:"item"`
			} `json:"items"`
			TotalCount int `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

func (c *Client) request(ctx context.Context, endpoint string, st station.Station, baseDate, baseTime string) ([]kmaItem, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("serviceKey", c.serviceKey)
		values.Set("pageNo", "1")
		values.Set("numOfRows", "1000")
		values.Set("dataType", "JSON")
		values.Set("base_date", baseDate)
		values.Set("base_time", baseTime)
		values.Set("nx", strconv.Itoa(st.Nx))
		values.Set("ny", strconv.Itoa(st.Ny))

		u := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doResilientRequest(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	var payload kmaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, parseError(err)
	}

	if code := payload.Response.Header.ResultCode; code != "" && code != "00" {
		return nil, noDataError("kma result %s: %s", code, payload.Response.Header.ResultMsg)
	}
	return payload.Response.Body.Items.Item, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
