package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`
	// TrustedProxies is a comma-separated list of proxy IPs or CIDRs whose
	// X-Forwarded-For header is honored for the client IP. Empty means the
	// service is exposed directly and the peer address is the client.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	// Redis holds the document store connection.
	Redis RedisConfig `mapstructure:",squash"`

	// Tracking holds the order tracking behaviour switches.
	Tracking TrackingConfig `mapstructure:",squash"`

	// Lookup holds the public tracking-number lookup limits.
	Lookup LookupConfig `mapstructure:",squash"`
}

// RedisConfig holds the Redis connection details.
type RedisConfig struct {
	// URL is the connection string, e.g. redis://:password@localhost:6379/0.
	URL string `mapstructure:"REDIS_URL" required:"true"`
	// OpTimeout bounds a single store round trip, in seconds.
	OpTimeout int `mapstructure:"REDIS_OP_TIMEOUT_SEC" default:"3"`
}

// TrackingConfig controls how tracking aggregates are built and mutated.
type TrackingConfig struct {
	// DefaultLeadDays is added to the placement time to seed the expected delivery.
	DefaultLeadDays int `mapstructure:"TRACKING_DEFAULT_LEAD_DAYS" default:"5"`
	// StrictTransitions rejects status edges outside the forward path and its exception branches.
	StrictTransitions bool `mapstructure:"TRACKING_STRICT_TRANSITIONS" default:"false"`
}

// LookupConfig holds the rate limit applied per client to GET /tracking/:number.
type LookupConfig struct {
	RatePerSec float64 `mapstructure:"LOOKUP_RATE_PER_SEC" default:"2"`
	Burst      int     `mapstructure:"LOOKUP_BURST" default:"5"`
}

// TrustedProxyList splits TrustedProxies into its entries.
func (c AppConfig) TrustedProxyList() []string {
	var out []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LeadTime returns the default expected-delivery lead time.
func (c TrackingConfig) LeadTime() time.Duration {
	return time.Duration(c.DefaultLeadDays) * 24 * time.Hour
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if config.Tracking.DefaultLeadDays < 0 {
		return nil, fmt.Errorf("invalid configuration: TRACKING_DEFAULT_LEAD_DAYS must not be negative")
	}
	if config.Lookup.RatePerSec <= 0 || config.Lookup.Burst <= 0 {
		return nil, fmt.Errorf("invalid configuration: LOOKUP_RATE_PER_SEC and LOOKUP_BURST must be positive")
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
