package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const defaultConfig = `
default_format:		rlL
wrap_continuations:		false
exclude_globs:
pool_size:
`

func loadOrFail(t *testing.T, cfgString string) *Config {
	cfg, err := Unmarshal([]byte(cfgString))
	if err != nil {
		t.Fatalf("Failed to read config: %v", err.Error())
	}
	return cfg
}

func ensureFail(t *testing.T, cfgString string, desc string) {
	_, err := Unmarshal([]byte(cfgString))
	if err == nil {
		t.Fatalf("Expected config err not found: %s", desc)
	}
	t.Logf("Config err: %v", err.Error())
}

func TestValidConfig(t *testing.T) {
	cfg := loadOrFail(t, defaultConfig)
	assert.Equal(t, "rlL", cfg.DefaultFormat)
	assert.False(t, cfg.WrapContinuations)
	assert.Empty(t, cfg.ExcludeGlobs)
	assert.Equal(t, DefaultPoolSize, cfg.PoolSize)
}

func TestEmptyConfigUsesDefaults(t *testing.T) {
	cfg := loadOrFail(t, "")
	assert.Equal(t, "rlL", cfg.DefaultFormat)
	assert.Equal(t, DefaultPoolSize, cfg.PoolSize)
	assert.False(t, cfg.CaseInsensitiveNames)
}

func TestWrapContinuationsAndCaseInsensitive(t *testing.T) {
	const cfgString = `
wrap_continuations: true
case_insensitive_names: true
`
	cfg := loadOrFail(t, cfgString)
	assert.True(t, cfg.WrapContinuations)
	assert.True(t, cfg.CaseInsensitiveNames)
}

func TestExcludeGlobs(t *testing.T) {
	const cfgString = `
exclude_globs:
  - "*.bak,v"
  - "Attic/*"
`
	cfg := loadOrFail(t, cfgString)
	assert.Equal(t, []string{"*.bak,v", "Attic/*"}, cfg.ExcludeGlobs)
}

func TestInvalidExcludeGlobFails(t *testing.T) {
	ensureFail(t, `
exclude_globs:
  - "["
`, "malformed glob")
}

func TestInvalidDefaultFormatFails(t *testing.T) {
	ensureFail(t, `
default_format: Z
`, "unknown format directive")
}

func TestPoolSizeMustBePositive(t *testing.T) {
	ensureFail(t, `
pool_size: 0
`, "pool_size must be positive")
	ensureFail(t, `
pool_size: -1
`, "negative pool_size")
}

func TestCustomPoolSize(t *testing.T) {
	cfg := loadOrFail(t, "pool_size: 7")
	assert.Equal(t, 7, cfg.PoolSize)
}
