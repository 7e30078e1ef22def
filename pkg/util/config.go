package util

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg"
)

func ReadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./data/")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// defaults + env are enough to run
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("region", pkg.DEFAULT_REGION)
	viper.SetDefault("osm_file", pkg.DEFAULT_OSM_FILE)
	viper.SetDefault("graph_file", pkg.DEFAULT_GRAPH_FILE)

	viper.SetDefault("catalog.backend", "csv")
	viper.SetDefault("catalog.file", pkg.DEFAULT_CATALOG_FILE)
	viper.SetDefault("catalog.dsn", "")
	viper.SetDefault("catalog.reserved_prefixes", pkg.DEFAULT_RESERVED_PREFIXES)
	viper.SetDefault("catalog.workers", 1)

	viper.SetDefault("geocoder.url", "https://nominatim.openstreetmap.org")
	viper.SetDefault("geocoder.user_agent", "geo_locator_app")
	viper.SetDefault("geocoder.timeout", "10s")
	viper.SetDefault("geocoder.requests_per_second", 1.0)
	viper.SetDefault("geocoder.cache_size", 4096)

	viper.SetDefault("routing.algorithm", "astar")
	viper.SetDefault("routing.landmarks", 16)
	viper.SetDefault("routing.landmark_file", pkg.DEFAULT_LANDMARK_FILE)
}

type GeocoderConfig struct {
	URL               string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	CacheSize         int
}

type CatalogConfig struct {
	Backend          string
	File             string
	DSN              string
	ReservedPrefixes []string
	Workers          int
}

type Config struct {
	Region       string
	OSMFile      string
	GraphFile    string
	Algorithm    string
	Landmarks    int
	LandmarkFile string
	Catalog      CatalogConfig
	Geocoder     GeocoderConfig
}

// LoadConfig reads the config file (if any) and returns the typed view of viper's settings.
func LoadConfig() (Config, error) {
	if err := ReadConfig(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Region:       viper.GetString("region"),
		OSMFile:      viper.GetString("osm_file"),
		GraphFile:    viper.GetString("graph_file"),
		Algorithm:    viper.GetString("routing.algorithm"),
		Landmarks:    viper.GetInt("routing.landmarks"),
		LandmarkFile: viper.GetString("routing.landmark_file"),
		Catalog: CatalogConfig{
			Backend:          viper.GetString("catalog.backend"),
			File:             viper.GetString("catalog.file"),
			DSN:              viper.GetString("catalog.dsn"),
			ReservedPrefixes: viper.GetStringSlice("catalog.reserved_prefixes"),
			Workers:          viper.GetInt("catalog.workers"),
		},
		Geocoder: GeocoderConfig{
			URL:               viper.GetString("geocoder.url"),
			UserAgent:         viper.GetString("geocoder.user_agent"),
			Timeout:           viper.GetDuration("geocoder.timeout"),
			RequestsPerSecond: viper.GetFloat64("geocoder.requests_per_second"),
			CacheSize:         viper.GetInt("geocoder.cache_size"),
		},
	}

	if cfg.Catalog.Workers < 1 {
		cfg.Catalog.Workers = 1
	}
	return cfg, nil
}
