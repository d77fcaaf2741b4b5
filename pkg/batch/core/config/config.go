package config

// EmbeddedConfig holds the content of application.yaml compiled into the binary.
type EmbeddedConfig []byte

// RetryConfig holds the bounded retry applied to whole-batch operations such as the warehouse load.
type RetryConfig struct {
	MaxAttempts         int      `yaml:"max_attempts"`         // MaxAttempts is the total number of attempts, including the first one.
	InitialInterval     int      `yaml:"initial_interval"`     // InitialInterval is the first backoff in milliseconds.
	MaxInterval         int      `yaml:"max_interval"`         // MaxInterval caps the backoff in milliseconds.
	Factor              float64  `yaml:"factor"`               // Factor multiplies the backoff after every failed attempt.
	RetryableExceptions []string `yaml:"retryable_exceptions"` // RetryableExceptions lists registered error names that are always retried.
}

// BatchConfig holds configuration specific to the batch engine.
type BatchConfig struct {
	// JobName is the name of the job launched at startup.
	JobName string `yaml:"job_name"`
	// Retry is the retry configuration for batch-level operations.
	Retry RetryConfig `yaml:"retry"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g. "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the zone used for log timestamps of job boundaries (e.g. "UTC", "Asia/Kolkata").
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// MaskedParameterKeys lists JobParameters keys whose values are masked in logs.
	MaskedParameterKeys []string `yaml:"masked_parameter_keys"`
}

// OTLPConfig describes an OTLP exporter endpoint.
type OTLPConfig struct {
	Endpoint string `yaml:"endpoint"` // Endpoint is host:port of the collector. Empty disables the exporter.
	Protocol string `yaml:"protocol"` // Protocol is "grpc" or "http".
	Insecure bool   `yaml:"insecure"` // Insecure disables TLS.
}

// MetricsConfig configures metric recording.
type MetricsConfig struct {
	// Enabled turns on the Prometheus recorder.
	Enabled bool `yaml:"enabled"`
	// PushgatewayURL is where metrics are pushed after every job run. Empty disables pushing.
	PushgatewayURL string `yaml:"pushgateway_url"`
	// OTLP optionally exports the same metrics through OpenTelemetry.
	OTLP OTLPConfig `yaml:"otlp"`
}

// TracingConfig configures distributed tracing.
type TracingConfig struct {
	Enabled     bool       `yaml:"enabled"`
	ServiceName string     `yaml:"service_name"`
	OTLP        OTLPConfig `yaml:"otlp"`
}

// ObservabilityConfig groups metrics and tracing.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// SurfinConfig holds all configuration under the "surfin" top-level key.
type SurfinConfig struct {
	Batch         BatchConfig         `yaml:"batch"`
	System        SystemConfig        `yaml:"system"`
	Security      SecurityConfig      `yaml:"security"`
	Observability ObservabilityConfig `yaml:"observability"`
	// AdaptorConfigs holds adapter settings keyed by adapter kind (e.g. "storage").
	// Sections are bound to typed structs with configbinder.
	AdaptorConfigs map[string]interface{} `yaml:"adaptor"`
}

// Config is the root of the application configuration.
type Config struct {
	// Surfin holds the batch framework configuration.
	Surfin SurfinConfig `yaml:"surfin"`
	// Application holds job-specific settings, bound by the application with configbinder.
	Application map[string]interface{} `yaml:"application"`
	// EmbeddedConfig is the raw YAML the configuration was loaded from.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Surfin: SurfinConfig{
			Batch: BatchConfig{
				Retry: RetryConfig{
					MaxAttempts:     3,
					InitialInterval: 1000,
					MaxInterval:     10000,
					Factor:          2.0,
					RetryableExceptions: []string{
						"context.DeadlineExceeded",
						"io.ErrUnexpectedEOF",
					},
				},
			},
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Security: SecurityConfig{
				MaskedParameterKeys: []string{"password", "api_key", "secret", "credential"},
			},
			Observability: ObservabilityConfig{
				Tracing: TracingConfig{ServiceName: "weather-etl"},
			},
			AdaptorConfigs: map[string]interface{}{},
		},
		Application: map[string]interface{}{},
	}
}
