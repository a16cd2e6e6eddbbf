// Package loader ingests the raw CSV snapshots and emits clean, bounded
// point sets. It never mutates its input files.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tablescout/hotspots/internal/models"
)

var restaurantColumns = []string{"name", "latitude", "longitude"}

var tripColumns = []string{"dropoff_latitude", "dropoff_longitude", "dropoff_datetime"}

var timeLayouts = []string{"2006-01-02 15:04:05", time.RFC3339}

// LoadRestaurants reads a restaurant table, detects its source, and returns
// the points that carry valid in-bounds coordinates.
func LoadRestaurants(path string, log *slog.Logger) ([]models.GeoPoint, models.Source, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, models.SourceUnknown, err
	}
	cols := indexColumns(header)
	if missing := missingColumns(cols, restaurantColumns); len(missing) > 0 {
		return nil, models.SourceUnknown, &models.SchemaError{File: path, Missing: missing}
	}
	source := detectSource(cols)
	log.Info("detected restaurant data source", "file", path, "source", source)

	var points []models.GeoPoint
	dropped := 0
	for _, row := range rows {
		lat, okLat := parseFloat(field(row, cols, "latitude"))
		lon, okLon := parseFloat(field(row, cols, "longitude"))
		if !okLat || !okLon {
			dropped++
			continue
		}
		p := models.GeoPoint{
			Name:      field(row, cols, "name"),
			Longitude: lon,
			Latitude:  lat,
			Cuisine:   field(row, cols, "cuisine"),
		}
		if !p.InBounds() {
			dropped++
			continue
		}
		if v, ok := parseFloat(field(row, cols, "rating")); ok {
			p.Rating = &v
		}
		if v, ok := parseFloat(field(row, cols, "price_level")); ok {
			p.PriceLevel = &v
		}
		if v, ok := parseFloat(field(row, cols, "user_ratings_total")); ok {
			n := int(v)
			p.UserRatingsTotal = &n
		}
		points = append(points, p)
	}
	if dropped > 0 {
		log.Info("filtered restaurants with invalid or out-of-bounds coordinates",
			"file", path, "dropped", dropped)
	}
	if len(points) == 0 {
		return nil, source, fmt.Errorf("%s: %w", path, models.ErrEmptyInput)
	}
	log.Info("loaded restaurants", "file", path, "count", len(points))
	return points, source, nil
}

// LoadTrips reads a taxi trip table and returns timestamped drop-off points.
// sampleFraction below 1 keeps a deterministic stride of rows instead of a
// random sample, so re-runs see identical input.
func LoadTrips(path string, sampleFraction float64, log *slog.Logger) ([]models.GeoPoint, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	cols := indexColumns(header)
	if missing := missingColumns(cols, tripColumns); len(missing) > 0 {
		return nil, &models.SchemaError{File: path, Missing: missing}
	}

	stride := 1
	if sampleFraction > 0 && sampleFraction < 1 {
		stride = int(math.Round(1 / sampleFraction))
	}

	var points []models.GeoPoint
	dropped := 0
	for i, row := range rows {
		if i%stride != 0 {
			continue
		}
		lat, okLat := parseFloat(field(row, cols, "dropoff_latitude"))
		lon, okLon := parseFloat(field(row, cols, "dropoff_longitude"))
		ts, okTime := parseTime(field(row, cols, "dropoff_datetime"))
		if !okLat || !okLon || !okTime {
			dropped++
			continue
		}
		p := models.GeoPoint{Longitude: lon, Latitude: lat, Timestamp: ts}
		if !p.InBounds() {
			dropped++
			continue
		}
		points = append(points, p)
	}
	if dropped > 0 {
		log.Info("filtered trips with invalid or out-of-bounds records", "file", path, "dropped", dropped)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: %w", path, models.ErrEmptyInput)
	}
	log.Info("loaded trip records", "file", path, "count", len(points), "stride", stride)
	return points, nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	var rows [][]string
	for {
		row, errRead := reader.Read()
		if errRead == io.EOF {
			break
		}
		if errRead != nil {
			return nil, nil, fmt.Errorf("failed to read row from %s: %w", path, errRead)
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func missingColumns(cols map[string]int, required []string) []string {
	var missing []string
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// detectSource decides which provider exported the table from its column
// signature.
func detectSource(cols map[string]int) models.Source {
	_, hasPlaceID := cols["place_id"]
	_, hasRating := cols["rating"]
	if hasPlaceID && hasRating {
		return models.SourceGoogleMaps
	}
	_, hasAmenity := cols["amenity"]
	_, hasCuisine := cols["cuisine"]
	if hasAmenity || hasCuisine {
		return models.SourceOpenStreetMap
	}
	return models.SourceUnknown
}

func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
