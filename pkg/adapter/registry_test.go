package adapter

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres"},
	}

	msg := err.Error()

	assert.Contains(t, msg, "fake_db", "error should name the unknown type")
	assert.Contains(t, msg, "duckdb", "error should list the available adapters")
	assert.Contains(t, msg, "starbridge.yaml", "error should point at the config file")
}

func TestRegister(t *testing.T) {
	Register("test_adapter_internal", func(_ *slog.Logger) Adapter { return nil })

	assert.True(t, IsRegistered("test_adapter_internal"))

	factory, ok := Get("test_adapter_internal")
	assert.True(t, ok)
	assert.NotNil(t, factory)
}

func TestNewAdapter_EmptyType(t *testing.T) {
	_, err := NewAdapter(Config{Type: ""}, nil)
	require.Error(t, err)
	assert.Equal(t, "adapter type not specified", err.Error())
}

func TestNewAdapter_UnknownType(t *testing.T) {
	_, err := NewAdapter(Config{Type: "no_such_engine"}, nil)
	require.Error(t, err)

	var unknownErr *UnknownAdapterError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "no_such_engine", unknownErr.Type)
}

func TestListAdapters_Sorted(t *testing.T) {
	Register("zz_last", func(_ *slog.Logger) Adapter { return nil })
	Register("aa_first", func(_ *slog.Logger) Adapter { return nil })

	names := ListAdapters()
	require.GreaterOrEqual(t, len(names), 2)
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i], "adapter names should be sorted")
	}
}
