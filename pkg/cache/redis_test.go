package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{
		Host:        "cache.internal",
		Port:        6380,
		Password:    "secret",
		DB:          2,
		PoolSize:    20,
		DialTimeout: time.Second,
		IOTimeout:   500 * time.Millisecond,
	})

	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, clientName, opts.ClientName)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)
	assert.Equal(t, 500*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 500*time.Millisecond, opts.WriteTimeout)
}

func TestOptionsKeepDefaults(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "localhost", Port: 6379})

	assert.Zero(t, opts.PoolSize)
	assert.Zero(t, opts.DialTimeout)
}
