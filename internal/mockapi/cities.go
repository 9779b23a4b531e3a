package mockapi

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// City holds the static facts about a known capital.
type City struct {
	Country    string `json:"country"`
	Region     string `json:"region"`
	Lat        string `json:"lat"`
	Lon        string `json:"lon"`
	TimezoneID string `json:"timezone_id"`
}

// LoadCities reads the capitals file keyed by city name.
func LoadCities(path string) (map[string]City, error) {
	if path == "" {
		return nil, fmt.Errorf("cities file path is not set")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cities file not found at %s: %w", path, err)
	}

	var cities map[string]City
	if err := json.Unmarshal(raw, &cities); err != nil {
		return nil, fmt.Errorf("parsing cities file: %w", err)
	}
	return cities, nil
}

// lookupCity finds a known city by case-insensitive name. The returned
// key preserves the file's canonical spelling.
func lookupCity(cities map[string]City, name string) (string, City, bool) {
	for key, city := range cities {
		if strings.EqualFold(key, name) {
			return key, city, true
		}
	}
	return "", City{}, false
}
