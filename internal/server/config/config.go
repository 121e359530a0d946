// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables, and command-line
// flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const ModeProduction = "production"

// Config holds runtime settings for the SCAMS server.
//
// Fields:
//   - Host / Port: bind address for the HTTP API.
//   - DatabaseURI: identity store URI. mongodb:// and mongodb+srv:// select
//     MongoDB, postgres:// and postgresql:// select PostgreSQL (pgx).
//   - SecretKey: HMAC secret for signing JWTs (HS256).
//   - Mode: runtime mode; "production" switches the CORS defaults and the
//     log format.
//   - CORSOrigins: explicit allow-list; when empty it is derived from Mode.
//   - EndpointAddrGRPC: bind address for the gRPC health endpoint; empty
//     disables it.
//   - BcryptCost: work factor for password digests.
//   - ResetPurgeSchedule: cron expression for clearing expired reset tokens.
//   - ScheduleCacheTTL: how long a generated room schedule is reused.
//   - S3*: object storage used to presign room image URLs; an empty bucket
//     leaves the static catalog URLs in place.
type Config struct {
	Host               string
	Port               int
	DatabaseURI        string
	SecretKey          string
	Mode               string
	LogLevel           string
	CORSOrigins        []string
	EndpointAddrGRPC   string
	BcryptCost         int
	ResetPurgeSchedule string
	ScheduleCacheTTL   time.Duration
	ShutdownTimeout    time.Duration
	S3RootUser         string
	S3RootPassword     string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
	ImageURLValidity   time.Duration
}

// LoadDefaults populates Config with development defaults. The store URI and
// the signing secret are deliberately left empty; Validate rejects them.
func (c *Config) LoadDefaults() {
	c.Port = 5000
	c.Mode = "development"
	c.LogLevel = "info"
	c.EndpointAddrGRPC = ":50051"
	c.BcryptCost = 10
	c.ResetPurgeSchedule = "@every 15m"
	c.ScheduleCacheTTL = 10 * time.Minute
	c.ShutdownTimeout = 10 * time.Second
	c.S3Region = "us-east-1"
	c.ImageURLValidity = 15 * time.Minute
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (including a .env file), and
// finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports every setting the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	return errors.Join(errs...)
}

// HTTPAddr is the listen address for the HTTP API.
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) IsProduction() bool {
	return c.Mode == ModeProduction
}

// AllowedOrigins is the CORS allow-list in effect.
func (c *Config) AllowedOrigins() []string {
	if len(c.CORSOrigins) > 0 {
		return c.CORSOrigins
	}
	if c.IsProduction() {
		return []string{"https://scams.com"}
	}
	return []string{"http://localhost:5173", "http://127.0.0.1:5173"}
}
