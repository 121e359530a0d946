package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/scams/internal/flagx"
	"github.com/dmitrijs2005/scams/internal/timex"
)

// JsonConfig is the DTO read from the optional JSON config file. Durations
// use timex.Duration so they may be written as "10m" or as nanoseconds.
type JsonConfig struct {
	Host               string         `json:"host"`
	Port               int            `json:"port"`
	DatabaseURI        string         `json:"database_uri"`
	SecretKey          string         `json:"secret_key"`
	Mode               string         `json:"mode"`
	LogLevel           string         `json:"log_level"`
	CORSOrigins        []string       `json:"cors_origins"`
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	BcryptCost         int            `json:"bcrypt_cost"`
	ResetPurgeSchedule string         `json:"reset_purge_schedule"`
	ScheduleCacheTTL   timex.Duration `json:"schedule_cache_ttl"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	ImageURLValidity   timex.Duration `json:"image_url_validity"`
}

// parseJson overlays config with the file named by -c/-config. Only fields
// present (non-zero) in the file replace the current values. Unreadable or
// malformed files panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.Host, c.Host)
	setInt(&config.Port, c.Port)
	setString(&config.DatabaseURI, c.DatabaseURI)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Mode, c.Mode)
	setString(&config.LogLevel, c.LogLevel)
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setInt(&config.BcryptCost, c.BcryptCost)
	setString(&config.ResetPurgeSchedule, c.ResetPurgeSchedule)
	if c.ScheduleCacheTTL.Duration > 0 {
		config.ScheduleCacheTTL = c.ScheduleCacheTTL.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.ImageURLValidity.Duration > 0 {
		config.ImageURLValidity = c.ImageURLValidity.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
