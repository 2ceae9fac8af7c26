// Package config provides environment-based configuration.
//
// Loads from .env file (godotenv), maps to Config struct via caarlos0/env
// struct tags. Validates required fields and value formats.
package config
