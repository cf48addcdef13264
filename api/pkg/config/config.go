package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type ServerConfig struct {
	WebServer WebServer
	Store     Store
	Identity  Identity
	Search    Search
	Auth      Auth
}

func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	err := envconfig.Process("", &cfg)
	if err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

type WebServer struct {
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `envconfig:"SERVER_PORT" default:"8080"`
}

type Store struct {
	URI string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	// Prefix is prepended to every database name, e.g. "dev2" turns the
	// identity database into "dev2identity"
	Prefix      string `envconfig:"MONGO_DATABASE_PREFIX" default:""`
	MaxPoolSize uint64 `envconfig:"MONGO_MAX_POOL_SIZE" default:"100"`
}

type Identity struct {
	BaseURL string `envconfig:"IDENTITY_BASE_URL" default:"http://identity:8080/api/v1"`
	Token   string `envconfig:"IDENTITY_TOKEN"`
}

type Search struct {
	// ConfigFile optionally overrides the built-in resource type table
	ConfigFile   string `envconfig:"SEARCH_CONFIG_FILE"`
	DefaultLimit int    `envconfig:"SEARCH_DEFAULT_LIMIT" default:"10"`
	MaxLimit     int    `envconfig:"SEARCH_MAX_LIMIT" default:"100"`

	RoleCacheTTL      time.Duration `envconfig:"SEARCH_ROLE_CACHE_TTL" default:"10s"`
	WorkspaceCacheTTL time.Duration `envconfig:"SEARCH_WORKSPACE_CACHE_TTL" default:"180s"`
	ProjectCacheTTL   time.Duration `envconfig:"SEARCH_PROJECT_CACHE_TTL" default:"180s"`
}

type Auth struct {
	// TokenSecret verifies inbound bearer tokens and seeds the cursor
	// signing key
	TokenSecret string        `envconfig:"AUTH_TOKEN_SECRET"`
	CursorTTL   time.Duration `envconfig:"CURSOR_TTL" default:"24h"`
}
