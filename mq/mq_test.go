package mq

import (
	"context"
	"testing"
	"time"

	"campusexplorer/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sink struct {
	events []models.CatalogEvent
}

func (s *sink) Notify(_ context.Context, e models.CatalogEvent) { s.events = append(s.events, e) }

func TestPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	conn := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { conn.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan models.CatalogEvent, 1)
	done, err := Subscribe(ctx, conn, "catalog", zap.NewNop(), func(e models.CatalogEvent) { got <- e })
	require.NoError(t, err)

	b := models.Building{Key: "campanile", Name: "Campanile", Coordinates: &models.Coordinates{X: 95, Y: 5}}
	NewPublisher(conn, "catalog", zap.NewNop()).Notify(ctx, models.NewCatalogEvent(models.ActionMoved, "campanile", &b))

	select {
	case e := <-got:
		assert.Equal(t, models.ActionMoved, e.Action)
		assert.Equal(t, "campanile", e.Key)
		require.NotNil(t, e.Building)
		assert.Equal(t, 95.0, e.Building.Coordinates.X)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	mr := miniredis.RunT(t)
	conn := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { conn.Close() })
	mr.Close()

	NewPublisher(conn, "catalog", zap.NewNop()).Notify(context.Background(), models.NewCatalogEvent(models.ActionDeleted, "x", nil))
}

func TestFanout(t *testing.T) {
	a, b := &sink{}, &sink{}
	Fanout{a, b}.Notify(context.Background(), models.NewCatalogEvent(models.ActionCreated, "library", nil))
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}
