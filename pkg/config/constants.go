package config

const (
	// EnvPrefix namespaces every milltrack environment variable.
	EnvPrefix = "MILLTRACK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
