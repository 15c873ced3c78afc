// Package feature derives the fixed-schema numeric row consumed by the
// per-category scoring models.
package feature

import (
	"fmt"
	"math"
	"time"

	"github.com/yunseo-dev/weatherdish/internal/weather"
)

// The categorical vocabularies below are fixed and pre-declared. Each value
// encodes to its zero-based index, and the index values are semantic inputs
// to the scoring models: the order here must stay byte-for-byte identical to
// the encoder order the models were trained with. Do not reorder or append
// in the middle.

// Genders in trained encoder order.
var Genders = []string{"남성", "여성"}

// AgeGroups in trained encoder order.
var AgeGroups = []string{"중장년 (40대 이상)", "청년 (20~30대)", "청소년 (10대)"}

// Regions in trained encoder order. Every registry station name must appear
// here; Validate enforces that at startup.
var Regions = []string{"강릉", "광주", "대구", "대전", "부산", "서울", "수원", "제주", "청주"}

// Row is the fixed-order feature record. It is built fresh per request,
// passed by value, and never persisted.
type Row struct {
	Gender    int
	AgeGroup  int
	Region    int
	Temp      float64
	Humidity  float64
	WindSpeed float64
	Rainfall  float64
	MonthSin  float64
	MonthCos  float64
	DaySin    float64
	DayCos    float64
	IsWeekend bool
}

// Size is the number of scalars in a row vector.
const Size = 12

// Vector flattens the row into its canonical scalar order: the three
// categorical indices, the four weather scalars, the four calendar
// encodings, and the weekend flag as 0/1.
func (r Row) Vector() []float64 {
	weekend := 0.0
	if r.IsWeekend {
		weekend = 1.0
	}
	return []float64{
		float64(r.Gender), float64(r.AgeGroup), float64(r.Region),
		r.Temp, r.Humidity, r.WindSpeed, r.Rainfall,
		r.MonthSin, r.MonthCos, r.DaySin, r.DayCos,
		weekend,
	}
}

// Build derives a feature row from demographic inputs, the resolved station
// name, a defaulted weather summary, and the selected date. Unknown
// vocabulary entries are configuration errors; with valid inputs Build is
// deterministic and always succeeds.
func Build(gender, ageGroup, stationName string, w weather.Summary, date time.Time) (Row, error) {
	g, err := index(Genders, gender)
	if err != nil {
		return Row{}, fmt.Errorf("gender: %w", err)
	}
	a, err := index(AgeGroups, ageGroup)
	if err != nil {
		return Row{}, fmt.Errorf("age group: %w", err)
	}
	r, err := index(Regions, stationName)
	if err != nil {
		return Row{}, fmt.Errorf("region: %w", err)
	}

	month := float64(date.Month())
	// Day is normalized against a fixed 31 regardless of month length, to
	// match the training pipeline.
	day := float64(date.Day())

	return Row{
		Gender:    g,
		AgeGroup:  a,
		Region:    r,
		Temp:      w.Temperature,
		Humidity:  w.Humidity,
		WindSpeed: w.WindSpeed,
		Rainfall:  w.Rainfall,
		MonthSin:  math.Sin(2 * math.Pi * month / 12),
		MonthCos:  math.Cos(2 * math.Pi * month / 12),
		DaySin:    math.Sin(2 * math.Pi * day / 31),
		DayCos:    math.Cos(2 * math.Pi * day / 31),
		IsWeekend: isWeekend(date),
	}, nil
}

// Validate checks that every station name has a region encoding. It runs at
// startup; a failure here is a configuration error, not a request-time
// condition.
func Validate(stationNames []string) error {
	for _, name := range stationNames {
		if _, err := index(Regions, name); err != nil {
			return fmt.Errorf("station %q has no region encoding", name)
		}
	}
	return nil
}

func index(vocab []string, value string) (int, error) {
	for i, v := range vocab {
		if v == value {
			return i, nil
		}
	}
	return 0, fmt.Errorf("value %q not in vocabulary", value)
}

// isWeekend reports Saturday or Sunday, matching a Monday=0 weekday
// convention where indices 5 and 6 are the weekend.
func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
