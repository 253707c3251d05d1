package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Clients  ClientsConfig  `yaml:"clients"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	GroupID            string   `yaml:"group_id"`
}

type ClientsConfig struct {
	PricingURL             string `yaml:"pricing_url"`
	AvailabilityURL        string `yaml:"availability_url"`
	PaymentURL             string `yaml:"payment_url"`
	PricingTimeoutSec      int    `yaml:"pricing_timeout_seconds"`
	AvailabilityTimeoutSec int    `yaml:"availability_timeout_seconds"`
	PaymentTimeoutSec      int    `yaml:"payment_timeout_seconds"`
}

func (c ClientsConfig) PricingTimeout() time.Duration {
	return secondsOrDefault(c.PricingTimeoutSec, 10*time.Second)
}

func (c ClientsConfig) AvailabilityTimeout() time.Duration {
	return secondsOrDefault(c.AvailabilityTimeoutSec, 5*time.Second)
}

func (c ClientsConfig) PaymentTimeout() time.Duration {
	return secondsOrDefault(c.PaymentTimeoutSec, 10*time.Second)
}

type BookingConfig struct {
	ExpirationMinutes int  `yaml:"expiration_minutes"`
	ItineraryCacheTTL int  `yaml:"itinerary_cache_ttl_seconds"`
	StrictCapacity    bool `yaml:"strict_capacity"`
}

func (b BookingConfig) ExpirationTTL() time.Duration {
	if b.ExpirationMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(b.ExpirationMinutes) * time.Minute
}

type WorkerConfig struct {
	ExpirationSweepSeconds int `yaml:"expiration_sweep_seconds"`
}

func (w WorkerConfig) SweepInterval() time.Duration {
	return secondsOrDefault(w.ExpirationSweepSeconds, time.Minute)
}

func secondsOrDefault(seconds int, def time.Duration) time.Duration {
	if seconds <= 0 {
		return def
	}
	return time.Duration(seconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
