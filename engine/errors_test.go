package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(KindDiscovery, "discover", "x", nil))

	cause := errors.New("permission denied")
	err := Wrap(KindDiscovery, "discover", "cannot list /r", cause)
	assert.Equal(t, "[discovery:discover] cannot list /r: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindDiscovery))
	assert.False(t, IsKind(err, KindPersistence))
}

func TestWrap_KeepsFirstKind(t *testing.T) {
	inner := NewError(KindPersistence, "store batch", "disk full")
	outer := Wrap(KindInfrastructure, "pipeline", "run failed", fmt.Errorf("collector: %w", inner))

	assert.True(t, IsKind(outer, KindPersistence))
	assert.Equal(t, "[persistence:store batch] disk full", inner.Error())
}

func TestIsKind_PlainError(t *testing.T) {
	assert.False(t, IsKind(errors.New("x"), KindConfig))
	assert.False(t, IsKind(nil, KindConfig))
}

func TestConfigValidate(t *testing.T) {
	good := DefaultConfig()
	assert.NoError(t, good.Validate())
	assert.GreaterOrEqual(t, good.MaxConcurrentTasks, 2)

	for name, mutate := range map[string]func(*Config){
		"tasks":  func(c *Config) { c.MaxConcurrentTasks = 0 },
		"buffer": func(c *Config) { c.ChannelBufferSize = 0 },
		"batch":  func(c *Config) { c.BatchSize = -1 },
	} {
		c := DefaultConfig()
		mutate(&c)
		err := c.Validate()
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
		assert.True(t, IsKind(err, KindConfig), name)
	}
}

func TestNewError(t *testing.T) {
	err := NewError(KindInfrastructure, "process directory", "engine is already running")
	assert.True(t, IsKind(err, KindInfrastructure))
	assert.Nil(t, errors.Unwrap(err))
	assert.Equal(t, "[infrastructure:process directory] engine is already running", err.Error())
}
