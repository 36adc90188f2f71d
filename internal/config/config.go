// Package config loads the server configuration.
//
// Sources are applied in increasing priority: built-in defaults, a JSON
// file named by the CONFIG environment variable, environment variables
// (a .env file is loaded first when present), and command line flags.
// The result is validated before it is returned.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the server. The token signing secret has
// no default and must come from the file, JWT_SECRET or -s.
type Config struct {
	RunAddr                   string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel                  string        `env:"LOG_LEVEL" validate:"loglevel"`
	AuthTokenSigningSecretKey string        `env:"JWT_SECRET" validate:"required,base64url"`
	AuthTokenTTL              time.Duration `env:"JWT_TTL" validate:"gt=0"`
	PasswordHashCost          int           `env:"BCRYPT_COST" validate:"min=4,max=31"`
	EnforceOwnership          bool          `env:"AUTH_ENFORCE_OWNERSHIP"`
	TrustedSubnet             string        `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
	AllowedOrigins            []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," validate:"min=1"`
	ShutdownTimeout           time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// jsonConfig mirrors Config for the JSON file. Pointers tell "absent"
// apart from zero values; durations are Go duration strings.
type jsonConfig struct {
	RunAddr                   *string  `json:"server_address"`
	LogLevel                  *string  `json:"log_level"`
	AuthTokenSigningSecretKey *string  `json:"jwt_secret"`
	AuthTokenTTL              *string  `json:"jwt_ttl"`
	PasswordHashCost          *int     `json:"bcrypt_cost"`
	EnforceOwnership          *bool    `json:"auth_enforce_ownership"`
	TrustedSubnet             *string  `json:"trusted_subnet"`
	AllowedOrigins            []string `json:"cors_allowed_origins"`
	ShutdownTimeout           *string  `json:"shutdown_timeout"`
}

var defaultConfig = Config{
	RunAddr:                   ":4000",
	LogLevel:                  "info",
	AuthTokenTTL:              24 * time.Hour,
	PasswordHashCost:          10,
	EnforceOwnership:          true,
	TrustedSubnet:             "",
	AllowedOrigins:            []string{"*"},
	ShutdownTimeout:           10 * time.Second,
}

// InitOption customizes New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips command line flags; tests use it.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses the given arguments instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// New builds and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if path := os.Getenv("CONFIG"); path != "" {
		if err := values.applyJSONFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(values); err != nil {
		return nil, err
	}

	if !options.disableFlagsParsing {
		if err := values.parseFlags(options.args); err != nil {
			return nil, err
		}
	}

	if err := validate(values); err != nil {
		return nil, err
	}

	return values, nil
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
	values.AllowedOrigins = append([]string(nil), defaults.AllowedOrigins...)
}

func (c *Config) applyJSONFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/applyJSONFile(): error while reading %q: %w", path, err)
	}

	var fromJSON jsonConfig
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		return fmt.Errorf("in internal/config/config.go/applyJSONFile(): error while `json.Unmarshal()` calling: %w", err)
	}

	if fromJSON.RunAddr != nil {
		c.RunAddr = *fromJSON.RunAddr
	}
	if fromJSON.LogLevel != nil {
		c.LogLevel = *fromJSON.LogLevel
	}
	if fromJSON.AuthTokenSigningSecretKey != nil {
		c.AuthTokenSigningSecretKey = *fromJSON.AuthTokenSigningSecretKey
	}
	if fromJSON.AuthTokenTTL != nil {
		ttl, err := time.ParseDuration(*fromJSON.AuthTokenTTL)
		if err != nil {
			return fmt.Errorf("invalid jwt_ttl: %w", err)
		}
		c.AuthTokenTTL = ttl
	}
	if fromJSON.PasswordHashCost != nil {
		c.PasswordHashCost = *fromJSON.PasswordHashCost
	}
	if fromJSON.EnforceOwnership != nil {
		c.EnforceOwnership = *fromJSON.EnforceOwnership
	}
	if fromJSON.TrustedSubnet != nil {
		c.TrustedSubnet = *fromJSON.TrustedSubnet
	}
	if len(fromJSON.AllowedOrigins) > 0 {
		c.AllowedOrigins = fromJSON.AllowedOrigins
	}
	if fromJSON.ShutdownTimeout != nil {
		timeout, err := time.ParseDuration(*fromJSON.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown_timeout: %w", err)
		}
		c.ShutdownTimeout = timeout
	}

	return nil
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("bookcatalog", flag.ContinueOnError)

	origins := strings.Join(c.AllowedOrigins, ",")

	fs.StringVar(&c.RunAddr, "a", c.RunAddr, "address and port to run server")
	fs.StringVar(&c.LogLevel, "l", c.LogLevel, "logger level")
	fs.StringVar(&c.AuthTokenSigningSecretKey, "s", c.AuthTokenSigningSecretKey, "base64url encoded token signing secret")
	fs.DurationVar(&c.AuthTokenTTL, "ttl", c.AuthTokenTTL, "session token lifetime")
	fs.IntVar(&c.PasswordHashCost, "cost", c.PasswordHashCost, "bcrypt cost factor")
	fs.BoolVar(&c.EnforceOwnership, "enforce-ownership", c.EnforceOwnership, "check the token owner on every book operation")
	fs.StringVar(&c.TrustedSubnet, "t", c.TrustedSubnet, "CIDR allowed to read internal stats")
	fs.StringVar(&origins, "cors", origins, "comma separated CORS origins")

	if err := fs.Parse(args); err != nil {
		return err
	}

	c.AllowedOrigins = strings.Split(origins, ",")

	return nil
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func validate(values *Config) error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(values)
}
