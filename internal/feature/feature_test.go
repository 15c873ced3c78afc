package feature

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/yunseo-dev/weatherdish/internal/weather"
)

func buildOrFail(t *testing.T, gender, age, region string, sum weather.Summary, date time.Time) Row {
	t.Helper()
	row, err := Build(gender, age, region, sum, date)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return row
}

func TestBuild_EncodesVocabularyIndices(t *testing.T) {
	date := time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC)
	sum := weather.DefaultSummary()

	tests := []struct {
		gender, age, region string
		wantG, wantA, wantR int
	}{
		{"남성", "중장년 (40대 이상)", "강릉", 0, 0, 0},
		{"여성", "청년 (20~30대)", "서울", 1, 1, 5},
		{"남성", "청소년 (10대)", "청주", 0, 2, 8},
	}
	for _, tt := range tests {
		row := buildOrFail(t, tt.gender, tt.age, tt.region, sum, date)
		if row.Gender != tt.wantG || row.AgeGroup != tt.wantA || row.Region != tt.wantR {
			t.Errorf("Build(%s, %s, %s) indices = (%d, %d, %d), want (%d, %d, %d)",
				tt.gender, tt.age, tt.region,
				row.Gender, row.AgeGroup, row.Region,
				tt.wantG, tt.wantA, tt.wantR)
		}
	}
}

func TestBuild_UnknownVocabularyFails(t *testing.T) {
	date := time.Now()
	sum := weather.DefaultSummary()

	if _, err := Build("기타", "청년 (20~30대)", "서울", sum, date); err == nil {
		t.Error("unknown gender should fail")
	}
	if _, err := Build("남성", "노년", "서울", sum, date); err == nil {
		t.Error("unknown age group should fail")
	}
	if _, err := Build("남성", "청년 (20~30대)", "뉴욕", sum, date); err == nil {
		t.Error("unknown region should fail")
	}
}

func TestBuild_IsDeterministic(t *testing.T) {
	date := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	sum := weather.Summary{Temperature: 11.5, Humidity: 44, WindSpeed: 3.1, Rainfall: 0.5}

	first := buildOrFail(t, "여성", "청소년 (10대)", "부산", sum, date)
	for i := 0; i < 10; i++ {
		again := buildOrFail(t, "여성", "청소년 (10대)", "부산", sum, date)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("build is not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestBuild_DefaultsProduceFullyPopulatedRow(t *testing.T) {
	// Even with the neutral defaults the vector must come out complete.
	date := time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC)
	row := buildOrFail(t, "남성", "청년 (20~30대)", "대구", weather.DefaultSummary(), date)

	vec := row.Vector()
	if len(vec) != Size {
		t.Fatalf("vector length = %d, want %d", len(vec), Size)
	}
	if vec[3] != 20 || vec[4] != 50 || vec[5] != 2 || vec[6] != 0 {
		t.Errorf("weather scalars = %v, want defaults {20, 50, 2, 0}", vec[3:7])
	}
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("vector[%d] = %v", i, v)
		}
	}
}

func TestBuild_CalendarEncodingBoundaries(t *testing.T) {
	const tol = 1e-9
	sum := weather.DefaultSummary()

	// December wraps the month encoding back to sin(2π) ≈ 0, cos(2π) ≈ 1.
	dec := buildOrFail(t, "남성", "청년 (20~30대)", "서울", sum,
		time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC))
	if math.Abs(dec.MonthSin) > tol {
		t.Errorf("December MonthSin = %v, want ~0", dec.MonthSin)
	}
	if math.Abs(dec.MonthCos-1) > tol {
		t.Errorf("December MonthCos = %v, want ~1", dec.MonthCos)
	}

	// The 31st wraps the day encoding the same way.
	d31 := buildOrFail(t, "남성", "청년 (20~30대)", "서울", sum,
		time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC))
	if math.Abs(d31.DaySin) > tol {
		t.Errorf("day-31 DaySin = %v, want ~0", d31.DaySin)
	}
	if math.Abs(d31.DayCos-1) > tol {
		t.Errorf("day-31 DayCos = %v, want ~1", d31.DayCos)
	}

	june := buildOrFail(t, "남성", "청년 (20~30대)", "서울", sum,
		time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	if math.Abs(june.MonthSin-math.Sin(2*math.Pi*6/12)) > tol {
		t.Errorf("June MonthSin = %v", june.MonthSin)
	}
}

func TestBuild_WeekendFlag(t *testing.T) {
	sum := weather.DefaultSummary()

	saturday := buildOrFail(t, "남성", "청년 (20~30대)", "서울", sum,
		time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC))
	if !saturday.IsWeekend {
		t.Error("2025-07-19 is a Saturday; IsWeekend should be true")
	}

	sunday := buildOrFail(t, "남성", "청년 (20~30대)", "서울", sum,
		time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC))
	if !sunday.IsWeekend {
		t.Error("2025-07-20 is a Sunday; IsWeekend should be true")
	}

	wednesday := buildOrFail(t, "남성", "청년 (20~30대)", "서울", sum,
		time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC))
	if wednesday.IsWeekend {
		t.Error("2025-07-16 is a Wednesday; IsWeekend should be false")
	}
}

func TestValidate_RegistryNamesCovered(t *testing.T) {
	if err := Validate([]string{"서울", "부산", "제주"}); err != nil {
		t.Errorf("Validate of known stations failed: %v", err)
	}
	if err := Validate([]string{"서울", "평양"}); err == nil {
		t.Error("Validate should fail for a station without a region encoding")
	}
}
