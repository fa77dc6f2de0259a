//go:build redis_integration

package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_PublishSubscribe(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set; skipping integration test")
	}
	b, err := NewRedis(url, "trainfit.test", zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.Ping(t.Context()))

	ch, cancel := b.Subscribe(context.Background())
	defer cancel()
	time.Sleep(100 * time.Millisecond) // let the subscription register

	evt := New(AssignmentCompleted, map[string]any{"total_cost": 20.0})
	require.NoError(t, b.Publish(t.Context(), evt))

	select {
	case got := <-ch:
		assert.Equal(t, evt.ID, got.ID)
		assert.Equal(t, 20.0, got.Data["total_cost"])
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}
