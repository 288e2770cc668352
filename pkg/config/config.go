package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Supported color temperature domain in Kelvin. Values outside this range
// cannot be mapped to a meaningful white point and are rejected up front.
const (
	MinKelvin = 1000
	MaxKelvin = 25000
)

// Config holds the configuration for the sundial daemon
type Config struct {
	// Temperature configuration
	HighTemp int `yaml:"high_temp"` // daytime color temperature in Kelvin
	LowTemp  int `yaml:"low_temp"`  // nighttime color temperature in Kelvin

	// Ramp configuration
	DurationMin int     `yaml:"duration_min"` // dawn/dusk ramp length in minutes
	Gamma       float64 `yaml:"gamma"`        // gamma exponent applied to every channel

	// Location configuration
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`

	// Service configuration
	LogLevel   string `yaml:"log_level"`
	ConfigFile string `yaml:"-"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		HighTemp:    6500,
		LowTemp:     4000,
		DurationMin: 60,
		Gamma:       1.0,
		Latitude:    0,
		Longitude:   0,
		LogLevel:    "info",
	}
}

// LoadFromFile overrides config values from a YAML file. A missing file is
// only an error when the path was set explicitly.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables with SUNDIAL_ prefix
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("SUNDIAL_HIGH_TEMP"); v != "" {
		if temp, err := strconv.Atoi(v); err == nil {
			c.HighTemp = temp
		}
	}
	if v := os.Getenv("SUNDIAL_LOW_TEMP"); v != "" {
		if temp, err := strconv.Atoi(v); err == nil {
			c.LowTemp = temp
		}
	}
	if v := os.Getenv("SUNDIAL_DURATION_MIN"); v != "" {
		if min, err := strconv.Atoi(v); err == nil {
			c.DurationMin = min
		}
	}
	if v := os.Getenv("SUNDIAL_GAMMA"); v != "" {
		if gamma, err := strconv.ParseFloat(v, 64); err == nil {
			c.Gamma = gamma
		}
	}
	if v := os.Getenv("SUNDIAL_LATITUDE"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			c.Latitude = lat
		}
	}
	if v := os.Getenv("SUNDIAL_LONGITUDE"); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			c.Longitude = lon
		}
	}
	if v := os.Getenv("SUNDIAL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SUNDIAL_CONFIG"); v != "" {
		c.ConfigFile = v
	}
}

// LoadFromFlags parses command-line flags and overrides config values
func (c *Config) LoadFromFlags() {
	// Temperature flags
	pflag.IntVarP(&c.HighTemp, "high-temp", "T", c.HighTemp, "Daytime color temperature in Kelvin")
	pflag.IntVarP(&c.LowTemp, "low-temp", "t", c.LowTemp, "Nighttime color temperature in Kelvin")

	// Ramp flags
	pflag.IntVarP(&c.DurationMin, "duration", "d", c.DurationMin, "Dawn/dusk ramp duration in minutes")
	pflag.Float64VarP(&c.Gamma, "gamma", "g", c.Gamma, "Gamma exponent")

	// Location flags
	pflag.Float64VarP(&c.Latitude, "latitude", "l", c.Latitude, "Geographic latitude for the solar trajectory")
	pflag.Float64VarP(&c.Longitude, "longitude", "L", c.Longitude, "Geographic longitude for the solar trajectory")

	// Service flags
	pflag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	pflag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "Path to a YAML config file")

	pflag.Parse()
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.HighTemp == c.LowTemp {
		return fmt.Errorf("high (%d) and low (%d) temperature must not be identical", c.HighTemp, c.LowTemp)
	}
	if c.HighTemp < MinKelvin || c.HighTemp > MaxKelvin {
		return fmt.Errorf("high temperature %d outside supported range [%d, %d]", c.HighTemp, MinKelvin, MaxKelvin)
	}
	if c.LowTemp < MinKelvin || c.LowTemp > MaxKelvin {
		return fmt.Errorf("low temperature %d outside supported range [%d, %d]", c.LowTemp, MinKelvin, MaxKelvin)
	}
	if c.DurationMin < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	if c.Gamma <= 0 {
		return fmt.Errorf("gamma must be greater than zero")
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %.4f outside [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %.4f outside [-180, 180]", c.Longitude)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}
