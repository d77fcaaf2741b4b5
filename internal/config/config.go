// Package config binds and validates the job settings found under the
// "application:" section of application.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	coreConfig "github.com/tigerroll/weather-etl/pkg/batch/core/config"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
)

const moduleName = "weather_etl_config"

// Execution targets.
const (
	TargetLocal     = "local"
	TargetScheduled = "scheduled"
)

// WeatherAPIConfig configures the upstream weather service.
type WeatherAPIConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Country string        `yaml:"country" validate:"required"`
	Units   string        `yaml:"units" validate:"required,oneof=metric imperial standard"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// WeatherETLConfig is the configuration of the collect-and-load unit of work.
type WeatherETLConfig struct {
	// SecretPath locates the API credential: "projects/{p}/secrets/{s}/versions/{v}" or "env://NAME".
	SecretPath string `yaml:"secret_path" validate:"required"`
	// Locations is the ordered list of place names to query.
	Locations []string `yaml:"locations" validate:"required,min=1,dive,required"`
	// Concurrency bounds the number of in-flight lookups.
	Concurrency int `yaml:"concurrency" validate:"gte=1"`
	// DestinationTable is the fully-qualified "project.dataset.table".
	DestinationTable string `yaml:"destination_table" validate:"required"`
	// GCPProject owns the secret, the warehouse client and the load job.
	GCPProject string `yaml:"gcp_project" validate:"required"`
	// DatasetLocation pins the load job to the dataset's location. Empty lets the warehouse infer it.
	DatasetLocation string `yaml:"dataset_location"`
	// CredentialsFile optionally points GCP clients at a service account key file.
	CredentialsFile string           `yaml:"credentials_file"`
	Weather         WeatherAPIConfig `yaml:"weather"`
}

// ExecutionConfig is the static execution configuration of the job.
type ExecutionConfig struct {
	ExecutionTarget string `yaml:"execution_target" validate:"required,oneof=local scheduled"`
	JobName         string `yaml:"job_name" validate:"required"`
	StagingPath     string `yaml:"staging_path"`
	TempPath        string `yaml:"temp_path"`
	Region          string `yaml:"region"`
	WorkerRegion    string `yaml:"worker_region"`
	NetworkSubnet   string `yaml:"network_subnet"`
	ServiceAccount  string `yaml:"service_account" validate:"omitempty,email"`
	UsePublicIPs    bool   `yaml:"use_public_ips"`
	// Schedule is a cron expression; required for the scheduled target.
	Schedule string `yaml:"schedule" validate:"required_if=ExecutionTarget scheduled"`
	// OpsAddr is the listen address of the ops server in scheduled mode.
	OpsAddr string `yaml:"ops_addr"`
}

// DefaultWeatherETLConfig returns the defaults applied before binding.
func DefaultWeatherETLConfig() WeatherETLConfig {
	return WeatherETLConfig{
		Concurrency: 4,
		Weather: WeatherAPIConfig{
			BaseURL: "http://api.openweathermap.org/data/2.5/weather",
			Country: "IN",
			Units:   "metric",
			Timeout: 10 * time.Second,
		},
	}
}

// DefaultExecutionConfig returns the defaults applied before binding.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		ExecutionTarget: TargetLocal,
		JobName:         "weatherdataetl",
		OpsAddr:         ":8080",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewWeatherETLConfig binds application.weather_etl and validates it.
func NewWeatherETLConfig(cfg *coreConfig.Config) (*WeatherETLConfig, error) {
	out := DefaultWeatherETLConfig()
	if err := configbinder.BindSection(cfg.Application, "weather_etl", &out); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to bind application.weather_etl", err, false, false)
	}
	if err := validateStruct("application.weather_etl", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewExecutionConfig binds application.execution and validates it.
// An empty job_name falls back to surfin.batch.job_name.
func NewExecutionConfig(cfg *coreConfig.Config) (*ExecutionConfig, error) {
	out := DefaultExecutionConfig()
	if cfg.Surfin.Batch.JobName != "" {
		out.JobName = cfg.Surfin.Batch.JobName
	}
	if err := configbinder.BindSection(cfg.Application, "execution", &out); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to bind application.execution", err, false, false)
	}
	if err := validateStruct("application.execution", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func validateStruct(section string, target interface{}) error {
	err := validate.Struct(target)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return exception.NewBatchError(moduleName, "invalid "+section, err, false, false)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
	}
	return exception.NewBatchError(moduleName,
		fmt.Sprintf("invalid %s: %s", section, strings.Join(msgs, "; ")), err, false, false)
}
