// Package gcp builds the client options shared by every Google Cloud client of the job.
package gcp

import (
	"context"

	"go.uber.org/fx"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"

	appConfig "github.com/tigerroll/weather-etl/internal/config"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// ClientOptions builds the options for credentialsFile and serviceAccount.
// A non-empty serviceAccount is impersonated with the base credentials.
func ClientOptions(ctx context.Context, credentialsFile, serviceAccount string) ([]option.ClientOption, error) {
	var base []option.ClientOption
	if credentialsFile != "" {
		base = append(base, option.WithCredentialsFile(credentialsFile))
	}
	if serviceAccount == "" {
		return base, nil
	}

	ts, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
		TargetPrincipal: serviceAccount,
		Scopes:          []string{cloudPlatformScope},
	}, base...)
	if err != nil {
		return nil, exception.NewBatchError("gcp",
			"failed to impersonate service account "+serviceAccount, err, false, false)
	}
	logger.Infof("Google Cloud clients act as service account %s.", serviceAccount)
	return []option.ClientOption{option.WithTokenSource(ts)}, nil
}

// OptionsResult exposes the options under the `name:"gcpClientOptions"` tag.
type OptionsResult struct {
	fx.Out
	Options []option.ClientOption `name:"gcpClientOptions"`
}

// NewClientOptionsProvider is the Fx provider of the shared options.
func NewClientOptionsProvider(etl *appConfig.WeatherETLConfig, exec *appConfig.ExecutionConfig) (OptionsResult, error) {
	opts, err := ClientOptions(context.Background(), etl.CredentialsFile, exec.ServiceAccount)
	if err != nil {
		return OptionsResult{}, err
	}
	return OptionsResult{Options: opts}, nil
}

// Module provides the named client options.
var Module = fx.Options(
	fx.Provide(NewClientOptionsProvider),
)
