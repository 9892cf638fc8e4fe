package config

const (
	// EnvPrefix namespaces every environment variable read by envconfig.
	EnvPrefix = "SHOPLENS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SHOPLENS_DB_DSN"
	EnvDBHost = "SHOPLENS_DB_HOST"
	EnvDBUser = "SHOPLENS_DB_USER"
	EnvDBName = "SHOPLENS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
