package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings for the hotspot pipeline.
//
// Fields:
// - Env: The current environment (e.g., local, dev, prod).
// - MetricsPort: The monitoring server port; 0 disables the server.
// - RestaurantsFile: Path to the restaurant CSV input.
// - TaxiFile: Path to the taxi trip CSV input.
// - OutputDir: Directory the GeoJSON and statistics artifacts are written to.
// - SampleFraction: Fraction of taxi trips kept before weighting.
// - NamerType: Which region naming backend to use (static, google).
// - NamerKey: API key for the Google naming backend.
// - DBEnabled: Whether results are also persisted to PostgreSQL.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env                string
	MetricsPort        int
	RestaurantsFile    string
	TaxiFile           string
	OutputDir          string
	MinClusterSize     int
	MinSamples         int
	TaxiMinClusterSize int
	TaxiMinSamples     int
	SampleFraction     float64
	NamerType          string
	NamerKey           string
	DBEnabled          bool
	Database           PostgresConfig
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     int    // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad loads the configuration from the environment, panicking on values
// that cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	metricsPort, err := strconv.Atoi(setDeafultEnv("HOTSPOTS_METRICS_PORT", "0"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	minClusterSize, err := strconv.Atoi(setDeafultEnv("HOTSPOTS_MIN_CLUSTER_SIZE", "8"))
	if err != nil {
		panic("failed to parse restaurant min cluster size from configuration")
	}

	minSamples, err := strconv.Atoi(setDeafultEnv("HOTSPOTS_MIN_SAMPLES", "4"))
	if err != nil {
		panic("failed to parse restaurant min samples from configuration")
	}

	taxiMinClusterSize, err := strconv.Atoi(setDeafultEnv("HOTSPOTS_TAXI_MIN_CLUSTER_SIZE", "10"))
	if err != nil {
		panic("failed to parse taxi min cluster size from configuration")
	}

	taxiMinSamples, err := strconv.Atoi(setDeafultEnv("HOTSPOTS_TAXI_MIN_SAMPLES", "5"))
	if err != nil {
		panic("failed to parse taxi min samples from configuration")
	}

	sampleFraction, err := strconv.ParseFloat(setDeafultEnv("HOTSPOTS_SAMPLE_FRACTION", "0.1"), 64)
	if err != nil {
		panic("failed to parse taxi sample fraction from configuration")
	}

	dbEnabled, err := strconv.ParseBool(setDeafultEnv("HOTSPOTS_DB_ENABLED", "false"))
	if err != nil {
		panic("failed to parse database toggle from configuration")
	}

	dbPort, err := strconv.Atoi(setDeafultEnv("DB_PORT", "5432"))
	if err != nil {
		panic("failed to parse database port from configuration")
	}

	return &Config{
		Env:                setDeafultEnv("HOTSPOTS_ENV", "production"),
		MetricsPort:        metricsPort,
		RestaurantsFile:    setDeafultEnv("HOTSPOTS_RESTAURANTS_FILE", "data/raw/restaurants_nyc.csv"),
		TaxiFile:           setDeafultEnv("HOTSPOTS_TAXI_FILE", "data/raw/taxi_trips_nyc.csv"),
		OutputDir:          setDeafultEnv("HOTSPOTS_OUTPUT_DIR", "data/processed"),
		MinClusterSize:     minClusterSize,
		MinSamples:         minSamples,
		TaxiMinClusterSize: taxiMinClusterSize,
		TaxiMinSamples:     taxiMinSamples,
		SampleFraction:     sampleFraction,
		NamerType:          setDeafultEnv("HOTSPOTS_NAMER_TYPE", "static"),
		NamerKey:           os.Getenv("HOTSPOTS_NAMER_KEY"),
		DBEnabled:          dbEnabled,
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     dbPort,
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDeafultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
