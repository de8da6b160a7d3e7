package redis

import (
	"context"
	"testing"

	"github.com/dutrus/MESALIB/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NotConfigured(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), config.NotifyConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNew_InvalidURL(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), config.NotifyConfig{RedisURL: "http://not-redis"})
	assert.Error(t, err)
	assert.Nil(t, client)
}
