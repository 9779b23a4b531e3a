package mockapi

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// condition pairs a worldweatheronline-style code with its description.
type condition struct {
	Code        int
	Description string
}

var weatherConditions = []condition{
	{113, "Sunny"},
	{116, "Partly cloudy"},
	{119, "Cloudy"},
	{122, "Overcast"},
	{176, "Patchy rain possible"},
	{296, "Light rain"},
}

var windDirections = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Response mirrors the upstream weather API's JSON shape.
type Response struct {
	Request  RequestInfo  `json:"request"`
	Location LocationInfo `json:"location"`
	Current  CurrentInfo  `json:"current"`
}

type RequestInfo struct {
	Type     string `json:"type"`
	Query    string `json:"query"`
	Language string `json:"language"`
	Unit     string `json:"unit"`
}

type LocationInfo struct {
	Name           string `json:"name"`
	Country        string `json:"country"`
	Region         string `json:"region"`
	Lat            string `json:"lat"`
	Lon            string `json:"lon"`
	TimezoneID     string `json:"timezone_id"`
	Localtime      string `json:"localtime"`
	LocaltimeEpoch int64  `json:"localtime_epoch"`
	UTCOffset      string `json:"utc_offset"`
}

type CurrentInfo struct {
	ObservationTime     string     `json:"observation_time"`
	Temperature         int        `json:"temperature"`
	WeatherCode         int        `json:"weather_code"`
	WeatherDescriptions []string   `json:"weather_descriptions"`
	AirQuality          AirQuality `json:"air_quality"`
	WindSpeed           int        `json:"wind_speed"`
	WindDegree          int        `json:"wind_degree"`
	WindDir             string     `json:"wind_dir"`
	Pressure            int        `json:"pressure"`
	Precip              int        `json:"precip"`
	Humidity            int        `json:"humidity"`
	Cloudcover          int        `json:"cloudcover"`
	Feelslike           int        `json:"feelslike"`
	UVIndex             int        `json:"uv_index"`
	Visibility          int        `json:"visibility"`
}

// AirQuality values are strings upstream, so they stay strings here.
type AirQuality struct {
	CO           string `json:"co"`
	NO2          string `json:"no2"`
	O3           string `json:"o3"`
	SO2          string `json:"so2"`
	PM25         string `json:"pm2_5"`
	PM10         string `json:"pm10"`
	USEPAIndex   string `json:"us-epa-index"`
	GBDefraIndex string `json:"gb-defra-index"`
}

// Generator fabricates schema-consistent pseudo-random weather data.
type Generator struct {
	cities map[string]City
}

// NewGenerator creates a Generator over the known-cities table.
func NewGenerator(cities map[string]City) *Generator {
	return &Generator{cities: cities}
}

// Generate builds a randomized response for the requested city. Known
// cities keep their real coordinates and timezone; unknown cities get
// fabricated coordinates and UTC.
func (g *Generator) Generate(cityName, country, unit string) Response {
	city, query := g.resolveCity(cityName, country)

	loc, err := time.LoadLocation(city.TimezoneID)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)

	_, offsetSec := now.Zone()
	utcOffset := fmt.Sprintf("%d.0", offsetSec/3600)

	cond := weatherConditions[gofakeit.Number(0, len(weatherConditions)-1)]

	return Response{
		Request: RequestInfo{
			Type:     "City",
			Query:    query,
			Language: "en",
			Unit:     unit,
		},
		Location: LocationInfo{
			Name:           cityName,
			Country:        city.Country,
			Region:         city.Region,
			Lat:            city.Lat,
			Lon:            city.Lon,
			TimezoneID:     city.TimezoneID,
			Localtime:      now.Format("2006-01-02 15:04"),
			LocaltimeEpoch: now.Unix(),
			UTCOffset:      utcOffset,
		},
		Current: CurrentInfo{
			ObservationTime:     now.Format("03:04 PM"),
			Temperature:         gofakeit.Number(-10, 35),
			WeatherCode:         cond.Code,
			WeatherDescriptions: []string{cond.Description},
			AirQuality: AirQuality{
				CO:           fmt.Sprintf("%.2f", gofakeit.Float64Range(200, 600)),
				NO2:          fmt.Sprintf("%.3f", gofakeit.Float64Range(10, 50)),
				O3:           fmt.Sprintf("%d", gofakeit.Number(30, 80)),
				SO2:          fmt.Sprintf("%.1f", gofakeit.Float64Range(1, 15)),
				PM25:         fmt.Sprintf("%.2f", gofakeit.Float64Range(1, 25)),
				PM10:         fmt.Sprintf("%.2f", gofakeit.Float64Range(1, 25)),
				USEPAIndex:   fmt.Sprintf("%d", gofakeit.Number(1, 6)),
				GBDefraIndex: fmt.Sprintf("%d", gofakeit.Number(1, 10)),
			},
			WindSpeed:  gofakeit.Number(0, 50),
			WindDegree: gofakeit.Number(0, 359),
			WindDir:    windDirections[gofakeit.Number(0, len(windDirections)-1)],
			Pressure:   gofakeit.Number(980, 1040),
			Precip:     gofakeit.Number(0, 20),
			Humidity:   gofakeit.Number(30, 100),
			Cloudcover: gofakeit.Number(0, 100),
			Feelslike:  gofakeit.Number(-10, 35),
			UVIndex:    gofakeit.Number(1, 11),
			Visibility: gofakeit.Number(1, 20),
		},
	}
}

func (g *Generator) resolveCity(cityName, country string) (City, string) {
	if key, city, ok := lookupCity(g.cities, cityName); ok {
		return city, fmt.Sprintf("%s, %s", key, city.Country)
	}

	city := City{
		Country:    country,
		Region:     cityName,
		Lat:        fmt.Sprintf("%.3f", gofakeit.Latitude()),
		Lon:        fmt.Sprintf("%.3f", gofakeit.Longitude()),
		TimezoneID: "UTC",
	}
	if city.Country == "" {
		city.Country = "Unknown"
	}

	query := cityName
	if country != "" {
		query = fmt.Sprintf("%s, %s", cityName, country)
	}
	return city, query
}
