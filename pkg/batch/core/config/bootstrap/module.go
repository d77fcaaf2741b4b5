package bootstrap

import "go.uber.org/fx"

// Module applies configuration hooks at startup.
var Module = fx.Options(
	fx.Invoke(ApplySecurityConfigHook),
	fx.Invoke(VerifyJobsHook),
)
