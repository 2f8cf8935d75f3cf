package config

const (
	EnvPrefix = "BEEZIO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BEEZIO_DB_DSN"
	EnvDBHost = "BEEZIO_DB_HOST"
	EnvDBUser = "BEEZIO_DB_USER"
	EnvDBName = "BEEZIO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
