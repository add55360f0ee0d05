package config

import (
	"fmt"
	"os"
)

// Config menampung konfigurasi aplikasi dari environment.
type Config struct {
	ServerAddr string
	AppBaseURL string
	DBUser     string
	DBPass     string
	DBHost     string
	DBPort     string
	DBName     string
}

func Load() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPass:     getEnv("DB_PASS", ""),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBName:     getEnv("DB_NAME", "dinein"),
	}
}

// DSN membentuk DSN MySQL untuk GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
