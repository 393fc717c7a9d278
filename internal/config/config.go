package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
	Rooms      Rooms  `yaml:"rooms"`
}

// Redis - optional snapshot mirror, the server runs fully in memory without it.
type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Rooms struct {
	Retention       time.Duration `yaml:"retention" env:"ROOMS_RETENTION" env-default:"1h"`
	SweepInterval   time.Duration `yaml:"sweep-interval" env:"ROOMS_SWEEP_INTERVAL" env-default:"1m"`
	ReconnectPolicy string        `yaml:"reconnect-policy" env:"ROOMS_RECONNECT_POLICY" env-default:"by-name"`
}

const (
	ReconnectByName = "by-name"
	RejectWhenFull  = "reject"
)

var ErrUnknownReconnectPolicy = errors.New("unknown reconnect policy")

// MustLoad - load all configurations in config.yml file, or from the environment when the file is absent.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from env: %w", err)
		}
	} else if err = cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.Rooms.ReconnectPolicy {
	case ReconnectByName, RejectWhenFull:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReconnectPolicy, that.Rooms.ReconnectPolicy)
	}
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
