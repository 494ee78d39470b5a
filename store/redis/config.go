package redis

import (
	"crypto/tls"
	"time"

	"github.com/kochabx/authkit/core/tag"
)

// Config configures the Redis storage backend. Single, cluster and
// sentinel deployments are all addressed through Addrs.
type Config struct {
	// Addrs is the address list.
	// Single: ["localhost:6379"]; cluster: one entry per node;
	// sentinel: the sentinel addresses plus MasterName.
	Addrs []string

	// MasterName is required in sentinel mode.
	MasterName string

	Username string
	Password string

	// DB is ignored in cluster mode.
	DB int

	// KeyPrefix namespaces every key this storage writes, so several
	// clients can share one database. Defaults to "authkit:session:".
	KeyPrefix string `default:"authkit:session:"`

	DialTimeout  time.Duration `default:"5s"`
	ReadTimeout  time.Duration `default:"3s"`
	WriteTimeout time.Duration `default:"3s"`

	// PoolSize of 0 keeps the go-redis default.
	PoolSize     int
	MinIdleConns int
	PoolTimeout  time.Duration `default:"4s"`

	MaxRetries      int           `default:"3"`
	MinRetryBackoff time.Duration `default:"8ms"`
	MaxRetryBackoff time.Duration `default:"512ms"`

	TLSConfig *tls.Config
}

// ApplyDefaults fills unset fields and validates the address list.
func (c *Config) ApplyDefaults() error {
	if err := tag.ApplyDefaults(c); err != nil {
		return err
	}
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	return nil
}
