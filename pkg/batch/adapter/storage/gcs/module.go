package gcs

import (
	"go.uber.org/fx"
	"google.golang.org/api/option"

	storageAdapter "github.com/tigerroll/weather-etl/pkg/batch/adapter/storage"
)

// ProviderParams receives the shared Google client options, if the application provides them.
type ProviderParams struct {
	fx.In
	ClientOptions []option.ClientOption `name:"gcpClientOptions" optional:"true"`
}

// NewGCSProviderFromParams builds a GCSProvider from fx.
func NewGCSProviderFromParams(p ProviderParams) *GCSProvider {
	return NewGCSProvider(p.ClientOptions...)
}

// Module contributes the GCSProvider to the "storage_providers" group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewGCSProviderFromParams,
		fx.As(new(storageAdapter.StorageProvider)),
		fx.ResultTags(`group:"storage_providers"`),
	)),
)
