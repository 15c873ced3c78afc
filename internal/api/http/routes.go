package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kelvins/geocoder"

	"github.com/yunseo-dev/weatherdish/internal/feature"
	"github.com/yunseo-dev/weatherdish/internal/log"
	"github.com/yunseo-dev/weatherdish/internal/recommend"
	"github.com/yunseo-dev/weatherdish/internal/station"
	"github.com/yunseo-dev/weatherdish/internal/weather"
)

var validate = validator.New()

// topCategories is how many ranked food categories the UI renders.
const topCategories = 3

// Server bundles the collaborators the HTTP handlers need.
type Server struct {
	weather *weather.Service
	scorer  recommend.Scorer

	// geocodingEnabled gates the address query parameter; it requires a
	// configured geocoder API key.
	geocodingEnabled bool
}

// NewServer creates the handler bundle.
func NewServer(svc *weather.Service, scorer recommend.Scorer, geocodingEnabled bool) *Server {
	return &Server{
		weather:          svc,
		scorer:           scorer,
		geocodingEnabled: geocodingEnabled,
	}
}

// RequestID tags each request with a UUID, exposed in the response header
// and the logs.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := uuid.NewString()
		c.Locals("request_id", id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, s *Server) {
	v1 := app.Group("/api/v1")

	v1.Get("/stations", s.handleStations)
	v1.Get("/weather", s.handleWeather)
	v1.Get("/recommend", s.handleRecommend)
}

func (s *Server) handleStations(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"stations": station.All()})
}

func (s *Server) handleWeather(c *fiber.Ctx) error {
	req, err := parsePointQuery(c, s.geocodingEnabled)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	st := station.Nearest(req.Lat, req.Lon)
	sum, cached := s.weather.Summary(c.UserContext(), st, req.Date)

	return c.JSON(fiber.Map{
		"station": st.Name,
		"date":    req.Date.Format("2006-01-02"),
		"weather": summaryView(sum),
		"cached":  cached,
	})
}

func (s *Server) handleRecommend(c *fiber.Ctx) error {
	point, err := parsePointQuery(c, s.geocodingEnabled)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var demo demographicQuery
	demo.Gender = c.Query("gender")
	demo.AgeGroup = c.Query("age_group")
	if err := validate.Struct(demo); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	st := station.Nearest(point.Lat, point.Lon)
	sum, cached := s.weather.Summary(c.UserContext(), st, point.Date)

	row, err := feature.Build(demo.Gender, demo.AgeGroup, st.Name, sum, point.Date)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	top := recommend.TopN(s.scorer.Score(row), topCategories)

	log.Debugf("recommendation served: request_id=%v station=%s defaults=%t",
		c.Locals("request_id"), st.Name, sum.Defaults)

	return c.JSON(fiber.Map{
		"station":         st.Name,
		"date":            point.Date.Format("2006-01-02"),
		"weather":         summaryView(sum),
		"cached":          cached,
		"recommendations": top,
	})
}

// summaryView decorates a weather summary with its Korean display labels.
func summaryView(sum weather.Summary) fiber.Map {
	return fiber.Map{
		"temperature": sum.Temperature,
		"humidity":    sum.Humidity,
		"wind_speed":  sum.WindSpeed,
		"rainfall":    sum.Rainfall,
		"sky":         weather.SkyLabel(sum.Sky),
		"precip_type": weather.PrecipLabel(sum.PrecipType),
		"defaults":    sum.Defaults,
	}
}

// demographicQuery holds the user-profile query parameters. Value checks
// against the fixed vocabularies happen in the feature builder.
type demographicQuery struct {
	Gender   string `validate:"required"`
	AgeGroup string `validate:"required"`
}

// pointQuery is the resolved location and date of a request.
type pointQuery struct {
	Lat  float64
	Lon  float64
	Date time.Time
}

// parsePointQuery resolves lat/lon either directly from the query or, when
// geocoding is enabled, from a free-text address parameter. The date
// defaults to today in KST.
func parsePointQuery(c *fiber.Ctx, geocodingEnabled bool) (pointQuery, error) {
	var q pointQuery

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	address := c.Query("address")

	switch {
	case latStr != "" && lonStr != "":
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return q, errors.New("invalid lat")
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return q, errors.New("invalid lon")
		}
		q.Lat, q.Lon = lat, lon
	case address != "":
		if !geocodingEnabled {
			return q, errors.New("address lookup is not enabled; pass lat and lon")
		}
		loc, err := geocoder.Geocoding(geocoder.Address{
			City:    address,
			Country: "South Korea",
		})
		if err != nil {
			return q, errors.New("address could not be resolved")
		}
		q.Lat, q.Lon = loc.Latitude, loc.Longitude
	default:
		return q, errors.New("lat and lon (or address) query parameters are required")
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		q.Date = time.Now().In(weather.KST)
		return q, nil
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, weather.KST)
	if err != nil {
		return q, errors.New("invalid date; use YYYY-MM-DD")
	}
	q.Date = date
	return q, nil
}
