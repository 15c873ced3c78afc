// Package weather fetches, normalizes, and serves KMA short-term forecast
// and nowcast data for the registered stations.
package weather

import "strconv"

// KMA category codes used by this service. The nowcast endpoint reports T1H
// and RN1; the village forecast reports TMP and PCP for the same quantities.
const (
	CategoryTempNow      = "T1H" // air temperature, nowcast (°C)
	CategoryTempForecast = "TMP" // air temperature, forecast (°C)
	CategoryHumidity     = "REH" // relative humidity (%)
	CategoryWindSpeed    = "WSD" // wind speed (m/s)
	CategoryRainNow      = "RN1" // precipitation over the last hour (mm)
	CategoryRainForecast = "PCP" // forecast hourly precipitation (mm)
	CategoryRainChance   = "POP" // precipitation probability (%)
	CategorySky          = "SKY" // sky condition code
	CategoryPrecipType   = "PTY" // precipitation type code
)

// Observation maps KMA category codes to numeric values for one station and
// day. It may be partial; consumers apply defaults for missing categories.
type Observation map[string]float64

// Value returns the first present category from keys, or def when none is
// present.
func (o Observation) Value(def float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := o[k]; ok {
			return v
		}
	}
	return def
}

// Neutral defaults substituted when no observation could be obtained. The
// recommendation flow keeps going with these rather than failing.
const (
	DefaultTemperature = 20.0 // °C
	DefaultHumidity    = 50.0 // %
	DefaultWindSpeed   = 2.0  // m/s
	DefaultRainfall    = 0.0  // mm
)

// Summary is the defaulted scalar view of an Observation handed to the
// feature builder and the UI collaborator.
type Summary struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Rainfall    float64 `json:"rainfall"`
	Sky         int     `json:"sky"`
	PrecipType  int     `json:"precip_type"`

	// Defaults is true when the summary carries the neutral defaults
	// because no observation was available.
	Defaults bool `json:"defaults"`
}

// Summarize flattens an observation into a Summary, substituting the neutral
// defaults for any missing category. Summarize(nil) returns DefaultSummary().
func Summarize(obs Observation) Summary {
	if obs == nil {
		return DefaultSummary()
	}
	return Summary{
		Temperature: obs.Value(DefaultTemperature, CategoryTempNow, CategoryTempForecast),
		Humidity:    obs.Value(DefaultHumidity, CategoryHumidity),
		WindSpeed:   obs.Value(DefaultWindSpeed, CategoryWindSpeed),
		Rainfall:    obs.Value(DefaultRainfall, CategoryRainNow, CategoryRainForecast),
		Sky:         int(obs.Value(-1, CategorySky)),
		PrecipType:  int(obs.Value(-1, CategoryPrecipType)),
	}
}

// DefaultSummary returns the neutral-default summary used when weather data
// is unavailable.
func DefaultSummary() Summary {
	return Summary{
		Temperature: DefaultTemperature,
		Humidity:    DefaultHumidity,
		WindSpeed:   DefaultWindSpeed,
		Rainfall:    DefaultRainfall,
		Sky:         -1,
		PrecipType:  -1,
		Defaults:    true,
	}
}

// SkyLabel returns the Korean display label for a SKY code.
func SkyLabel(code int) string {
	switch code {
	case 1:
		return "맑음"
	case 3:
		return "구름 많음"
	case 4:
		return "흐림"
	default:
		return "정보 없음"
	}
}

// PrecipLabel returns the Korean display label for a PTY code.
func PrecipLabel(code int) string {
	switch code {
	case 0:
		return "없음"
	case 1:
		return "비"
	case 2:
		return "비/눈"
	case 3:
		return "눈"
	case 4:
		return "소나기"
	default:
		return "정보 없음"
	}
}

// parseValue converts a raw KMA value string to a float. Some forecast
// categories report sentinel strings instead of numbers (PCP reports
// "강수없음" on dry days); those yield ok=false and are skipped.
func parseValue(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
