package weather

import (
	"errors"
	"fmt"
	"time"
)

// observationTimeLayout matches the source's 12-hour clock strings,
// e.g. "07:24 AM".
const observationTimeLayout = "03:04 PM"

// ErrNoDescription is returned when the source payload carries an empty
// weather_descriptions list.
var ErrNoDescription = errors.New("payload has no weather description")

// Payload is the decoded body of a weather API response. Only the fields
// the pipeline persists are decoded; the source sends many more.
type Payload struct {
	Location struct {
		Name      string `json:"name"`
		Country   string `json:"country"`
		UTCOffset string `json:"utc_offset"`
	} `json:"location"`
	Current struct {
		ObservationTime     string   `json:"observation_time"`
		Temperature         float64  `json:"temperature"`
		WeatherDescriptions []string `json:"weather_descriptions"`
		WindSpeed           float64  `json:"wind_speed"`
	} `json:"current"`
}

// Observation is a single validated weather reading ready for insertion.
// Description is always the first entry of the source's description list,
// even when the source provides several.
type Observation struct {
	City        string
	Temperature float64
	Description string
	WindSpeed   float64
	ObservedAt  time.Time
	UTCOffset   string
}

// Observation validates the payload and maps it into an Observation.
// The observed-at timestamp combines the parsed time-of-day with now's
// date, mirroring how the source reports observation_time.
func (p Payload) Observation(now time.Time) (Observation, error) {
	if len(p.Current.WeatherDescriptions) == 0 {
		return Observation{}, ErrNoDescription
	}

	tod, err := time.Parse(observationTimeLayout, p.Current.ObservationTime)
	if err != nil {
		return Observation{}, fmt.Errorf("invalid observation_time %q: %w", p.Current.ObservationTime, err)
	}

	observedAt := time.Date(
		now.Year(), now.Month(), now.Day(),
		tod.Hour(), tod.Minute(), 0, 0,
		now.Location(),
	)

	return Observation{
		City:        p.Location.Name,
		Temperature: p.Current.Temperature,
		Description: p.Current.WeatherDescriptions[0],
		WindSpeed:   p.Current.WindSpeed,
		ObservedAt:  observedAt,
		UTCOffset:   p.Location.UTCOffset,
	}, nil
}
