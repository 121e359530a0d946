package config

import (
	"strings"

	"github.com/spf13/viper"
)

// envFile is read when present; process environment variables win over it.
var envFile = ".env"

// parseEnv overlays config with environment variables:
//
//	PORT, HOST, MONGODB_URI (alias DATABASE_URI), JWT_SECRET, NODE_ENV,
//	LOG_LEVEL, CORS_ORIGINS (comma separated), GRPC_ADDR, BCRYPT_COST,
//	RESET_PURGE_SCHEDULE, S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET,
//	S3_REGION, S3_BASE_ENDPOINT
//
// Unset or empty variables leave the current value untouched.
func parseEnv(config *Config) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v.IsSet(k) && v.GetString(k) != "" {
				*dst = v.GetString(k)
				return
			}
		}
	}
	num := func(dst *int, key string) {
		if v.IsSet(key) && v.GetString(key) != "" {
			*dst = v.GetInt(key)
		}
	}

	str(&config.Host, "HOST")
	num(&config.Port, "PORT")
	str(&config.DatabaseURI, "MONGODB_URI", "DATABASE_URI")
	str(&config.SecretKey, "JWT_SECRET")
	str(&config.Mode, "NODE_ENV")
	str(&config.LogLevel, "LOG_LEVEL")
	str(&config.EndpointAddrGRPC, "GRPC_ADDR")
	num(&config.BcryptCost, "BCRYPT_COST")
	str(&config.ResetPurgeSchedule, "RESET_PURGE_SCHEDULE")
	str(&config.S3RootUser, "S3_ROOT_USER")
	str(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	str(&config.S3Bucket, "S3_BUCKET")
	str(&config.S3Region, "S3_REGION")
	str(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	var origins string
	str(&origins, "CORS_ORIGINS")
	if list := splitList(origins); len(list) > 0 {
		config.CORSOrigins = list
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
