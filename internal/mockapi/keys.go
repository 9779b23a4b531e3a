package mockapi

import (
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"
)

// expiryLayouts are the accepted expires_at formats, most specific
// first.
var expiryLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// KeyInfo is the metadata stored for one whitelisted API key.
type KeyInfo struct {
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// KeyManager validates API keys against a JSON whitelist keyed by the
// raw key value.
type KeyManager struct {
	keys map[string]KeyInfo
	log  *zap.SugaredLogger
}

// LoadKeys reads the whitelist from path. A missing or unreadable file
// yields an empty manager that rejects every key, matching the original
// responder's behavior rather than refusing to start.
func LoadKeys(path string, log *zap.SugaredLogger) *KeyManager {
	m := &KeyManager{keys: make(map[string]KeyInfo), log: log}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warnw("API keys config not found", "path", path, "error", err)
		return m
	}
	if err := json.Unmarshal(raw, &m.keys); err != nil {
		log.Errorw("failed to parse API keys config", "path", path, "error", err)
		m.keys = make(map[string]KeyInfo)
		return m
	}

	log.Infow("loaded API keys", "count", len(m.keys), "path", path)
	return m
}

// IsValid reports whether the key is whitelisted, active, and not
// expired.
func (m *KeyManager) IsValid(apiKey string) bool {
	info, ok := m.keys[apiKey]
	if !ok {
		m.log.Warnw("API key not found in whitelist")
		return false
	}

	if !info.Active {
		m.log.Warnw("inactive API key attempted", "key_name", info.Name)
		return false
	}

	if info.ExpiresAt != "" {
		expiry, err := parseExpiry(info.ExpiresAt)
		if err != nil {
			m.log.Errorw("invalid expiry date format", "key_name", info.Name)
			return false
		}
		if time.Now().After(expiry) {
			m.log.Warnw("expired API key attempted", "key_name", info.Name)
			return false
		}
	}

	return true
}

// Info returns the metadata for a key, or the zero value when unknown.
func (m *KeyManager) Info(apiKey string) KeyInfo {
	return m.keys[apiKey]
}

func parseExpiry(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range expiryLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
