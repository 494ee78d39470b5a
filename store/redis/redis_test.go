package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{Addrs: []string{"localhost:6379"}}
	require.NoError(t, cfg.ApplyDefaults())

	assert.Equal(t, "authkit:session:", cfg.KeyPrefix)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestConfigCustomPrefixKept(t *testing.T) {
	cfg := &Config{
		Addrs:     []string{"localhost:6379"},
		KeyPrefix: "dashboard:",
	}
	require.NoError(t, cfg.ApplyDefaults())
	assert.Equal(t, "dashboard:", cfg.KeyPrefix)
}

func TestConfigEmptyAddrs(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.ApplyDefaults(), ErrEmptyAddrs)
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
