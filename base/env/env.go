package env

import (
	"os"
)

const defaultConfigFile = "infra/configs/config.yaml"

// PodName example: k8s-musicnft-api-6868d88fbd-bz8zv
func PodName() string {
	return os.Getenv("PODNAME")
}

// EnvName example: staging
func EnvName() string {
	return os.Getenv("ENV_NAME")
}

// AppName example: api
func AppName() string {
	return os.Getenv("APP_NAME")
}

// ConfigFile returns the yaml config path, CONFIG_FILE overrides the default
func ConfigFile() string {
	if f := os.Getenv("CONFIG_FILE"); f != "" {
		return f
	}
	return defaultConfigFile
}
