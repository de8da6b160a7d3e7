//go:build integration

package notify

import (
	"context"
	"testing"

	"github.com/dutrus/MESALIB/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_RedisStreamSink(t *testing.T) {
	client := testdb.NewRedis(t)
	ctx := context.Background()

	sink := NewRedisStreamSink(client, "mesalib:intents:test", 100)
	first, second := newIntent(t), newIntent(t)
	require.NoError(t, sink.Deliver(ctx, first))
	require.NoError(t, sink.Deliver(ctx, second))

	entries, err := client.XRange(ctx, "mesalib:intents:test", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, first.ID.String(), entries[0].Values["intent_id"])
	assert.Equal(t, "match_created", entries[0].Values["type"])
	assert.Equal(t, string(first.Payload), entries[0].Values["payload"])
	assert.Equal(t, second.ID.String(), entries[1].Values["intent_id"])
}
