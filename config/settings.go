package config

import (
	"time"

	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/policy"
	"github.com/kochabx/authkit/redirect"
)

// Settings is the kit's own configuration schema: where the API lives,
// which endpoints are public, how redirects behave and where the
// session is stored.
type Settings struct {
	API      APISettings     `mapstructure:"api"`
	Policy   PolicySettings  `mapstructure:"policy"`
	Redirect redirect.Config `mapstructure:"redirect"`
	Storage  StorageSettings `mapstructure:"storage"`
	Log      log.FileConfig  `mapstructure:"log"`
}

// APISettings locates the backend.
type APISettings struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	RefreshEndpoint string        `mapstructure:"refresh_endpoint" default:"/auth/refresh"`
	Timeout         time.Duration `mapstructure:"timeout" default:"10s"`

	// RefreshLeeway is how long before its exp claim a JWT access token
	// is refreshed proactively.
	RefreshLeeway time.Duration `mapstructure:"refresh_leeway" default:"30s"`
}

// PolicySettings overrides the endpoint lists. Empty lists keep the
// built-in defaults.
type PolicySettings struct {
	PublicEndpoints   []string `mapstructure:"public_endpoints"`
	ProtectedPrefixes []string `mapstructure:"protected_prefixes"`
}

// StorageSettings selects and configures the session storage backend.
type StorageSettings struct {
	Backend string `mapstructure:"backend" default:"memory" validate:"oneof=memory file redis"`

	File  FileStorageSettings  `mapstructure:"file"`
	Redis RedisStorageSettings `mapstructure:"redis"`
}

// FileStorageSettings configures the file backend. A non-empty
// passphrase enables encryption at rest.
type FileStorageSettings struct {
	Path       string `mapstructure:"path" default:"authkit-session.json"`
	Passphrase string `mapstructure:"passphrase"`
}

// RedisStorageSettings configures the redis backend.
type RedisStorageSettings struct {
	Addrs      []string `mapstructure:"addrs"`
	MasterName string   `mapstructure:"master_name"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	DB         int      `mapstructure:"db"`
	KeyPrefix  string   `mapstructure:"key_prefix"`
}

// BuildPolicy constructs the auth policy from the settings, falling
// back to the package defaults for lists left empty.
func (s *Settings) BuildPolicy() *policy.Policy {
	var opts []policy.Option
	if len(s.Policy.PublicEndpoints) > 0 {
		opts = append(opts, policy.WithPublicEndpoints(s.Policy.PublicEndpoints...))
	}
	if len(s.Policy.ProtectedPrefixes) > 0 {
		opts = append(opts, policy.WithProtectedPrefixes(s.Policy.ProtectedPrefixes...))
	}
	if len(opts) == 0 {
		return policy.Default
	}
	return policy.New(opts...)
}
