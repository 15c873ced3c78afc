package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yunseo-dev/weatherdish/internal/feature"
	"github.com/yunseo-dev/weatherdish/internal/recommend"
	"github.com/yunseo-dev/weatherdish/internal/station"
	"github.com/yunseo-dev/weatherdish/internal/weather"
)

type stubStore struct {
	entries map[string]weather.Observation
}

func (s *stubStore) Get(stationName string, day time.Time) (weather.Observation, error) {
	if s.entries == nil {
		return nil, nil
	}
	return s.entries[stationName+"_"+day.Format("2006-01-02")], nil
}

func (s *stubStore) Put(stationName string, day time.Time, obs weather.Observation) error {
	if s.entries == nil {
		s.entries = make(map[string]weather.Observation)
	}
	s.entries[stationName+"_"+day.Format("2006-01-02")] = obs
	return nil
}

type stubFetcher struct {
	obs weather.Observation
	err error
}

func (f *stubFetcher) Fetch(ctx context.Context, st station.Station, day time.Time) (weather.Observation, error) {
	return f.obs, f.err
}

func (f *stubFetcher) FetchNearest(ctx context.Context, st station.Station, day time.Time) (weather.Observation, error) {
	return f.obs, f.err
}

func escape(s string) string {
	return url.QueryEscape(s)
}

func testScorer() recommend.Scorer {
	models := make(map[string]recommend.Model)
	for i, cat := range recommend.Categories {
		w := make([]float64, feature.Size)
		w[0] = float64(i)
		models[cat] = recommend.Model{Weights: w}
	}
	return recommend.NewLinearScorer(models)
}

func newTestApp(fetcher weather.Fetcher) *fiber.App {
	app := fiber.New()
	svc := weather.NewService(&stubStore{}, fetcher)
	RegisterRoutes(app, NewServer(svc, testScorer(), false))
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body := make(map[string]any)
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, data)
	}
	return body
}

func TestStations_ListsRegistry(t *testing.T) {
	app := newTestApp(&stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stations", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	stations, ok := body["stations"].([]any)
	if !ok || len(stations) != len(station.All()) {
		t.Errorf("stations payload = %v", body["stations"])
	}
}

func TestWeather_RequiresCoordinates(t *testing.T) {
	app := newTestApp(&stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestWeather_RejectsMalformedDate(t *testing.T) {
	app := newTestApp(&stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather?lat=37.5&lon=126.9&date=15-07-2025", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestWeather_ResolvesNearestStation(t *testing.T) {
	app := newTestApp(&stubFetcher{obs: weather.Observation{"T1H": 24, "REH": 58}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather?lat=37.50&lon=126.95", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["station"] != "서울" {
		t.Errorf("station = %v, want 서울", body["station"])
	}
	wx, _ := body["weather"].(map[string]any)
	if wx["defaults"] != false {
		t.Errorf("defaults flag = %v, want false", wx["defaults"])
	}
	if wx["temperature"] != 24.0 {
		t.Errorf("temperature = %v, want 24", wx["temperature"])
	}
}

func TestWeather_FlagsDefaultsWhenFetchFails(t *testing.T) {
	app := newTestApp(&stubFetcher{err: errors.New("unreachable")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather?lat=35.1&lon=129.0", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200; weather unavailability must not fail the request", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	wx, _ := body["weather"].(map[string]any)
	if wx["defaults"] != true {
		t.Errorf("defaults flag = %v, want true", wx["defaults"])
	}
	if wx["temperature"] != 20.0 {
		t.Errorf("temperature = %v, want neutral default 20", wx["temperature"])
	}
}

func TestRecommend_RequiresDemographics(t *testing.T) {
	app := newTestApp(&stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommend?lat=37.5&lon=126.9", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRecommend_RejectsUnknownVocabulary(t *testing.T) {
	app := newTestApp(&stubFetcher{obs: weather.Observation{"T1H": 24}})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/recommend?lat=37.5&lon=126.9&gender=other&age_group="+escape("청년 (20~30대)"), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRecommend_ReturnsTopThree(t *testing.T) {
	app := newTestApp(&stubFetcher{obs: weather.Observation{"T1H": 24, "REH": 58}})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/recommend?lat=37.5&lon=126.9&gender="+escape("여성")+"&age_group="+escape("청년 (20~30대)"), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	recs, ok := body["recommendations"].([]any)
	if !ok || len(recs) != 3 {
		t.Fatalf("recommendations = %v, want 3 entries", body["recommendations"])
	}

	first, _ := recs[0].(map[string]any)
	if first["category"] == "" || first["label"] == "" {
		t.Errorf("first recommendation incomplete: %v", first)
	}
}

func TestRecommend_AddressWithoutGeocoderIsRejected(t *testing.T) {
	app := newTestApp(&stubFetcher{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/recommend?address=%EC%84%9C%EC%9A%B8&gender="+escape("남성")+"&age_group="+escape("청소년 (10대)"), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 when geocoding is disabled", resp.StatusCode)
	}
}
