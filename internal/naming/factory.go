package naming

import (
	"errors"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"
)

// NamerType selects a naming backend.
type NamerType string

const (
	// NamerTypeStatic produces plain ranked names.
	NamerTypeStatic NamerType = "static"
	// NamerTypeGoogle appends the neighborhood via reverse geocoding.
	NamerTypeGoogle NamerType = "google"
)

// NamerConfig holds the configuration for creating a namer.
type NamerConfig struct {
	Type   NamerType
	APIKey string // Required for the Google backend.
	Logger *slog.Logger
}

// NewNamer creates the namer selected by the configuration.
func NewNamer(config NamerConfig) (Namer, error) {
	switch config.Type {
	case NamerTypeStatic:
		return StaticNamer{}, nil
	case NamerTypeGoogle:
		if config.APIKey == "" {
			return nil, errors.New("API key is required for the Google namer")
		}
		client, err := maps.NewClient(maps.WithAPIKey(config.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
		}
		return NewGoogleNamer(client, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported namer type: %s", config.Type)
	}
}
