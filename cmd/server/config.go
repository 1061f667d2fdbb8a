package main

import (
	"os"
	"strconv"
)

// Config holds the mirror server configuration
type Config struct {
	Port     int
	Region   string
	Product  string
	CacheDir string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() *Config {
	port := 3080
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	region := "eu"
	if r := os.Getenv("NGDP_REGION"); r != "" {
		region = r
	}

	product := "hsb"
	if p := os.Getenv("NGDP_PRODUCT"); p != "" {
		product = p
	}

	return &Config{
		Port:     port,
		Region:   region,
		Product:  product,
		CacheDir: os.Getenv("NGDP_CACHE_DIR"),
	}
}
