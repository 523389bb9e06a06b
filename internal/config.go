package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=8080"`
	GRPCPort             int           `env:"GRPC_PORT,default=9090"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	ResetCodeTTL         time.Duration `env:"RESET_CODE_TTL,default=15m"`
	PromoteChannelOwners bool          `env:"PROMOTE_CHANNEL_OWNERS,default=true"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	MaxMessageLength     int           `env:"MAX_MESSAGE_LENGTH,default=1000"`
	MessagesPageSize     int           `env:"MESSAGES_PAGE_SIZE,default=50"`
	ArgonMemoryKB        uint32        `env:"ARGON_MEMORY_KB,default=65536"`
	ArgonIterations      uint32        `env:"ARGON_ITERATIONS,default=3"`
	DumpStateOnExit      bool          `env:"DUMP_STATE_ON_EXIT,default=false"`
}

// LoadConfig reads the optional dotenv files, then decodes the environment.
// Variables already set in the environment win over the files.
func LoadConfig(files ...string) (Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("unable to load %s: %w", file, err)
		}
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	switch {
	case c.MaxMessageLength < 1:
		return fmt.Errorf("MAX_MESSAGE_LENGTH must be positive, got %d", c.MaxMessageLength)
	case c.MessagesPageSize < 1:
		return fmt.Errorf("MESSAGES_PAGE_SIZE must be positive, got %d", c.MessagesPageSize)
	case c.ResetCodeTTL <= 0:
		return fmt.Errorf("RESET_CODE_TTL must be positive, got %s", c.ResetCodeTTL)
	case c.Port == c.GRPCPort:
		return fmt.Errorf("PORT and GRPC_PORT must differ, both are %d", c.Port)
	}
	return nil
}

func (c Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}
