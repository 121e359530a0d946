package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"HOST", "PORT", "MONGODB_URI", "DATABASE_URI", "JWT_SECRET", "NODE_ENV", "LOG_LEVEL",
	"CORS_ORIGINS", "GRPC_ADDR", "BCRYPT_COST", "RESET_PURGE_SCHEDULE",
	"S3_ROOT_USER", "S3_ROOT_PASSWORD", "S3_BUCKET", "S3_REGION", "S3_BASE_ENDPOINT",
}

// isolateEnv blanks every variable parseEnv looks at and points it at a
// missing .env file.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	orig := envFile
	envFile = filepath.Join(t.TempDir(), "missing.env")
	t.Cleanup(func() { envFile = orig })
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, 5000, c.Port)
	assert.Equal(t, "development", c.Mode)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, "@every 15m", c.ResetPurgeSchedule)
	assert.Equal(t, 10*time.Minute, c.ScheduleCacheTTL)
	assert.Equal(t, 15*time.Minute, c.ImageURLValidity)
	assert.Empty(t, c.DatabaseURI)
	assert.Empty(t, c.SecretKey)
	assert.Empty(t, c.S3Bucket)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	isolateEnv(t)

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, 5000, c.Port)
	assert.Equal(t, ":5000", c.HTTPAddr())
	assert.Equal(t, "development", c.Mode)
	assert.Error(t, c.Validate(), "defaults lack the store URI and the secret")
}

func TestLoadConfig_LayerPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	isolateEnv(t)

	path := writeTempJSON(t, "", "", map[string]any{
		"port":         7000,
		"database_uri": "mongodb://json",
		"secret_key":   "json-secret",
		"mode":         "production",
	})
	t.Setenv("PORT", "7100")
	t.Setenv("JWT_SECRET", "env-secret")
	os.Args = []string{"testbin", "-c", path, "-p", "7200"}

	c := LoadConfig()

	assert.Equal(t, 7200, c.Port, "flags win over env and json")
	assert.Equal(t, "env-secret", c.SecretKey, "env wins over json")
	assert.Equal(t, "mongodb://json", c.DatabaseURI, "json wins over defaults")
	assert.Equal(t, "production", c.Mode)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		c.DatabaseURI = "mongodb://localhost:27017/scams"
		c.SecretKey = "s"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "missing uri", mutate: func(c *Config) { c.DatabaseURI = "" }, wantErr: "MONGODB_URI is required"},
		{name: "missing secret", mutate: func(c *Config) { c.SecretKey = "" }, wantErr: "JWT_SECRET is required"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "invalid port"},
		{name: "bad cost", mutate: func(c *Config) { c.BcryptCost = 99 }, wantErr: "bcrypt cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI is required")
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestAllowedOrigins(t *testing.T) {
	c := &Config{Mode: "development"}
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, c.AllowedOrigins())

	c.Mode = ModeProduction
	assert.Equal(t, []string{"https://scams.com"}, c.AllowedOrigins())

	c.CORSOrigins = []string{"https://campus.example"}
	assert.Equal(t, []string{"https://campus.example"}, c.AllowedOrigins())
}
