package config

import "go.uber.org/fx"

// NewLoggingConfigProvider extracts *LoggingConfig from *Config.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Surfin.System.Logging
}

// NewRetryConfigProvider extracts *RetryConfig from *Config.
func NewRetryConfigProvider(cfg *Config) *RetryConfig {
	return &cfg.Surfin.Batch.Retry
}

// NewObservabilityConfigProvider extracts *ObservabilityConfig from *Config.
func NewObservabilityConfigProvider(cfg *Config) *ObservabilityConfig {
	return &cfg.Surfin.Observability
}

// Module provides *Config and its sub-sections. The application supplies
// EmbeddedConfig and, optionally, the `name:"envFilePath"` string.
var Module = fx.Options(
	fx.Provide(func() EnvironmentExpander {
		return NewOsEnvironmentExpander()
	}),
	fx.Provide(NewConfigProvider),
	fx.Provide(NewLoggingConfigProvider),
	fx.Provide(NewRetryConfigProvider),
	fx.Provide(NewObservabilityConfigProvider),
)
