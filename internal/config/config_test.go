package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJSON = `{
	"server_address": ":3000",
	"log_level": "warn",
	"jwt_ttl": "1h",
	"bcrypt_cost": 6,
	"auth_enforce_ownership": false,
	"trusted_subnet": "10.0.0.0/8"
}`

const testSecret = "dGVzdC1vbmx5LWJvb2tjYXRhbG9nLXNpZ25pbmcta2V5"

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	file, err := os.CreateTemp("", "config*.json")
	require.NoError(t, err)
	_, err = file.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	t.Cleanup(func() {
		err := os.Remove(file.Name())
		require.NoError(t, err)
	})
	return file.Name()
}

func TestApplyDefaults(t *testing.T) {
	values := Config{}

	applyDefaults(&values, defaultConfig)

	assert.Equal(t, ":4000", values.RunAddr)
	assert.Equal(t, 24*time.Hour, values.AuthTokenTTL)
	assert.Equal(t, 10, values.PasswordHashCost)
	assert.True(t, values.EnforceOwnership)

	values.AllowedOrigins[0] = "http://changed"
	assert.Equal(t, "*", defaultConfig.AllowedOrigins[0], "defaults must not be shared")
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.RunAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestConfigPriorityJSONOnly(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)

	t.Setenv("JWT_SECRET", testSecret)
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.RunAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.AuthTokenTTL)
	assert.Equal(t, 6, cfg.PasswordHashCost)
	assert.False(t, cfg.EnforceOwnership)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet)
}

func TestConfigPriorityJSONPlusEnv(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_ADDRESS", ":4001")
	t.Setenv("AUTH_ENFORCE_OWNERSHIP", "true")

	t.Setenv("JWT_SECRET", testSecret)
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":4001", cfg.RunAddr) // env overrides json
	assert.True(t, cfg.EnforceOwnership)
	assert.Equal(t, "warn", cfg.LogLevel) // from JSON
}

func TestConfigPriorityAllSources(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_ADDRESS", ":4001")
	t.Setenv("LOG_LEVEL", "error")

	t.Setenv("JWT_SECRET", testSecret)
	cfg, err := New(WithArgs([]string{
		"-a", ":6000",
		"-cors", "http://localhost:3000,http://127.0.0.1:3000",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.RunAddr) // CLI > ENV > JSON
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 6, cfg.PasswordHashCost) // from JSON
}

func TestConfigEnvOnly(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	t.Setenv("JWT_SECRET", testSecret)
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.AuthTokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown log level", key: "LOG_LEVEL", val: "loud"},
		{name: "bad address", key: "SERVER_ADDRESS", val: "nowhere"},
		{name: "bad subnet", key: "TRUSTED_SUBNET", val: "10.0.0.0"},
		{name: "secret is not base64url", key: "JWT_SECRET", val: "not base64!"},
		{name: "bcrypt cost too low", key: "BCRYPT_COST", val: "2"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", testSecret)
			t.Setenv(testCase.key, testCase.val)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}

func TestConfigBrokenJSON(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("CONFIG", writeTempJSON(t, `{"server_address":`))

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}

func TestConfigRequiresSigningSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := New(WithDisableFlagsParsing(true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuthTokenSigningSecretKey")

	assert.Empty(t, defaultConfig.AuthTokenSigningSecretKey)

	cfg, err := New(WithArgs([]string{"-s", testSecret}))
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.AuthTokenSigningSecretKey)

	t.Setenv("CONFIG", writeTempJSON(t, `{"jwt_secret":"`+testSecret+`"}`))
	cfg, err = New(WithDisableFlagsParsing(true))
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.AuthTokenSigningSecretKey)
}
