package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// FLOCKR_ADDR targets a running HTTP server, e.g. http://localhost:8080.
	// When empty the suite starts the platform in process.
	HTTPAddr string `envconfig:"FLOCKR_ADDR"`
	// FLOCKR_GRPC_ADDR targets the health endpoint of the same server.
	GRPCAddr string `envconfig:"FLOCKR_GRPC_ADDR"`
	// E2E_DEBUG_JSON allows dumping full request/response bodies
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
