// Package config loads the batch configuration once at process start from the
// embedded YAML, an optional .env file, and SURFIN_* environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string              `name:"envFilePath" optional:"true"`
	Expander       EnvironmentExpander `optional:"true"`
}

// LoadConfig builds the configuration:
//  1. load envFilePath (or ./.env) into the process environment, if present;
//  2. start from NewConfig() defaults;
//  3. expand ${VAR} placeholders in the embedded YAML;
//  4. decode the YAML over the defaults;
//  5. override individual fields from SURFIN_* environment variables.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig, NewOsEnvironmentExpander())
}

func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig, expander EnvironmentExpander) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Debugf(".env file (%s) not loaded: %v", envFilePath, err)
		}
	} else if err := godotenv.Load(); err != nil {
		logger.Debugf(".env file not loaded: %v", err)
	}

	cfg := NewConfig()

	expanded, err := expander.Expand(embeddedConfig)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to expand environment placeholders", err, false, false)
	}

	// yaml.v3 only assigns keys that are present, so decoding onto the defaults merges them.
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to unmarshal embedded config", err, false, false)
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load config from environment variables", err, false, false)
	}

	if cfg.Surfin.AdaptorConfigs == nil {
		cfg.Surfin.AdaptorConfigs = map[string]interface{}{}
	}
	if cfg.Application == nil {
		cfg.Application = map[string]interface{}{}
	}
	cfg.EmbeddedConfig = embeddedConfig
	return cfg, nil
}

// NewConfigProvider is an Fx provider that loads *Config, applies the log level and
// validates the configured retryable error names.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	expander := params.Expander
	if expander == nil {
		expander = NewOsEnvironmentExpander()
	}
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig, expander)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Surfin.System.Logging.Level)
	logger.Debugf("Log level set to: %s", cfg.Surfin.System.Logging.Level)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks framework-level settings.
func Validate(cfg *Config) error {
	retry := cfg.Surfin.Batch.Retry
	if retry.MaxAttempts < 1 {
		return exception.NewBatchErrorf(moduleName, "surfin.batch.retry.max_attempts must be >= 1, got %d", retry.MaxAttempts)
	}
	if retry.Factor < 1 {
		return exception.NewBatchErrorf(moduleName, "surfin.batch.retry.factor must be >= 1, got %v", retry.Factor)
	}
	for _, name := range retry.RetryableExceptions {
		if !exception.IsErrorTypeRegistered(name) {
			return exception.NewBatchErrorf(moduleName, "retry configuration references unknown error type '%s'", name)
		}
	}
	for _, otlp := range []OTLPConfig{cfg.Surfin.Observability.Metrics.OTLP, cfg.Surfin.Observability.Tracing.OTLP} {
		if otlp.Endpoint != "" && otlp.Protocol != "grpc" && otlp.Protocol != "http" {
			return exception.NewBatchErrorf(moduleName, "unsupported OTLP protocol '%s' (want grpc or http)", otlp.Protocol)
		}
	}
	return nil
}

// loadStructFromEnv walks val and sets every leaf field that has a matching environment
// variable. Names are built from yaml tags: surfin.system.logging.level -> SURFIN_SYSTEM_LOGGING_LEVEL.
// Map fields are left to YAML.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField converts value to the kind of field. Slices of strings are comma separated.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return nil
		}
		parts := strings.Split(value, ",")
		out := reflect.MakeSlice(field.Type(), 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = reflect.Append(out, reflect.ValueOf(p))
			}
		}
		field.Set(out)
	}
	return nil
}
