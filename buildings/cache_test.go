package buildings

import (
	"context"
	"testing"
	"time"

	"campusexplorer/config"
	"campusexplorer/models"
	"campusexplorer/rdx"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// pausingStore lets a test hold a Find after it has taken its snapshot.
type pausingStore struct {
	*MemoryStore
	snapshotTaken chan struct{}
	resume        chan struct{}
}

func (s *pausingStore) Find(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error) {
	list, err := s.MemoryStore.Find(ctx, filter)
	if s.snapshotTaken != nil {
		close(s.snapshotTaken)
		<-s.resume
		s.snapshotTaken = nil
	}
	return list, err
}

func TestListCacheNeverStoresSnapshotOlderThanWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	conn, err := rdx.Connect(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store := &pausingStore{MemoryStore: NewMemoryStore()}
	c := NewCatalog(store, Options{}, zap.NewNop()).WithCache(rdx.NewCache(conn, time.Minute, zap.NewNop()))
	ctx := context.Background()

	req := libraryRequest()
	_, err = c.Create(ctx, req)
	require.NoError(t, err)

	store.snapshotTaken = make(chan struct{})
	store.resume = make(chan struct{})
	done := make(chan []models.Building, 1)
	go func() {
		list, err := c.List(ctx, models.BuildingFilter{})
		assert.NoError(t, err)
		done <- list
	}()

	<-store.snapshotTaken
	_, err = c.UpdatePosition(ctx, "library", 40, 60)
	require.NoError(t, err)
	close(store.resume)

	stale := <-done
	require.Len(t, stale, 1)
	assert.Nil(t, stale[0].Coordinates)

	list, err := c.List(ctx, models.BuildingFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Coordinates)
	assert.Equal(t, models.Coordinates{X: 40, Y: 60}, *list[0].Coordinates)
}
