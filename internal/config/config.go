package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/yunseo-dev/weatherdish/internal/feature"
	"github.com/yunseo-dev/weatherdish/internal/log"
	"github.com/yunseo-dev/weatherdish/internal/station"
)

// AppConfig carries everything the binaries need, loaded once at startup.
type AppConfig struct {
	// KMAServiceKey is the credential for the forecast/nowcast endpoints.
	KMAServiceKey string `validate:"required"`

	// GeocoderAPIKey enables the optional address-to-coordinates path.
	// Empty disables it; map clicks carry coordinates directly.
	GeocoderAPIKey string

	// CacheFile is the flat-file weather cache path.
	CacheFile string `validate:"required"`

	// ModelsFile holds the per-category scoring model coefficients.
	ModelsFile string `validate:"required"`

	// PrefetchDays is the cache-warming horizon including today.
	PrefetchDays int `validate:"gte=1,lte=4"`

	// PrefetchInterval controls how often the scheduler re-runs the
	// prefetcher.
	PrefetchInterval time.Duration

	// HTTPTimeout bounds outbound KMA calls.
	HTTPTimeout time.Duration

	Port  string
	Debug bool
}

var validate = validator.New()

// Load reads configuration from the environment with sensible defaults and
// validates it, including the cross-check between the station registry and
// the feature vocabulary. Callers treat any error as fatal: a registry or
// vocabulary mismatch must never surface as a per-request error.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	cfg := &AppConfig{
		KMAServiceKey:  os.Getenv("KMA_SERVICE_KEY"),
		GeocoderAPIKey: os.Getenv("GEOCODER_API_KEY"),
		CacheFile:      getenvDefault("WEATHER_CACHE_FILE", "weather_cache.json"),
		ModelsFile:     getenvDefault("MODELS_FILE", "models.json"),
		PrefetchDays:   getenvInt("PREFETCH_DAYS", 4),
		Port:           getenvDefault("PORT", "8080"),
		Debug:          os.Getenv("DEBUG") != "",
	}

	interval, err := time.ParseDuration(getenvDefault("PREFETCH_INTERVAL", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PREFETCH_INTERVAL: %w", err)
	}
	cfg.PrefetchInterval = interval

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	names := make([]string, 0, len(station.All()))
	for _, st := range station.All() {
		names = append(names, st.Name)
	}
	if err := feature.Validate(names); err != nil {
		return nil, fmt.Errorf("station registry: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
