package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
	Auth   Auth   `yaml:"auth"`
}

type Server struct {
	ListenAddr     string   `yaml:"listenAddr"`
	PostgresDsn    string   `yaml:"postgresDsn"`
	RedisAddr      string   `yaml:"redisAddr"`
	RedisDB        int      `yaml:"redisDB"`
	MemcachedAddr  string   `yaml:"memcachedAddr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	EnableTrace    bool     `yaml:"enableTrace"`
	TraceEndpoint  string   `yaml:"traceEndpoint"`
}

type Auth struct {
	Secret      string `yaml:"secret"`
	TokenExpiry int    `yaml:"tokenExpiry"` // seconds
}

// TokenExpiryDuration falls back to 84600 seconds when unset, matching
// the lifetime the frontend was built against.
func (a Auth) TokenExpiryDuration() time.Duration {
	if a.TokenExpiry <= 0 {
		return 84600 * time.Second
	}
	return time.Duration(a.TokenExpiry) * time.Second
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}

	return config, nil
}
