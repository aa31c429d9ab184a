package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Run("returns value when set", func(t *testing.T) {
		t.Setenv("TEST_STRING_SET", "value")
		assert.Equal(t, "value", GetEnv("TEST_STRING_SET", "default"))
	})

	t.Run("returns default when empty", func(t *testing.T) {
		t.Setenv("TEST_STRING_EMPTY", "")
		assert.Equal(t, "default", GetEnv("TEST_STRING_EMPTY", "default"))
	})
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		setEnv       bool
		expected     bool
	}{
		{
			name:         "returns true when env is 'true'",
			key:          "TEST_BOOL_TRUE",
			defaultValue: false,
			envValue:     "true",
			setEnv:       true,
			expected:     true,
		},
		{
			name:         "returns false when env is 'false'",
			key:          "TEST_BOOL_FALSE",
			defaultValue: true,
			envValue:     "false",
			setEnv:       true,
			expected:     false,
		},
		{
			name:         "returns true when env is '1'",
			key:          "TEST_BOOL_ONE",
			defaultValue: false,
			envValue:     "1",
			setEnv:       true,
			expected:     true,
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_BOOL_UNSET",
			defaultValue: true,
			setEnv:       false,
			expected:     true,
		},
		{
			name:         "returns default when env is invalid",
			key:          "TEST_BOOL_INVALID",
			defaultValue: true,
			envValue:     "not-a-bool",
			setEnv:       true,
			expected:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}
			assert.Equal(t, tt.expected, GetEnvBool(tt.key, tt.defaultValue))
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Run("parses integer", func(t *testing.T) {
		t.Setenv("TEST_INT", "42")
		assert.Equal(t, 42, GetEnvInt("TEST_INT", 7))
	})

	t.Run("returns default on garbage", func(t *testing.T) {
		t.Setenv("TEST_INT_BAD", "forty-two")
		assert.Equal(t, 7, GetEnvInt("TEST_INT_BAD", 7))
	})
}

func TestGetEnvDuration(t *testing.T) {
	t.Run("parses duration", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "90s")
		assert.Equal(t, 90*time.Second, GetEnvDuration("TEST_DURATION", time.Minute))
	})

	t.Run("returns default on garbage", func(t *testing.T) {
		t.Setenv("TEST_DURATION_BAD", "soon")
		assert.Equal(t, time.Minute, GetEnvDuration("TEST_DURATION_BAD", time.Minute))
	})
}

func TestParseCommaSeparated(t *testing.T) {
	assert.Equal(t, []string{}, ParseCommaSeparated(""))
	assert.Equal(t, []string{"a", "b", "c"}, ParseCommaSeparated(" a , b,,c "))
}
