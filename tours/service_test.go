package tours

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"campusexplorer/buildings"
	"campusexplorer/errs"
	"campusexplorer/models"
	"campusexplorer/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const placeholder = "/assets/images/placeholder.png"

var (
	owner    = models.Capability{UserID: "u1", Email: "x@iastate.edu", Role: models.RoleUser}
	stranger = models.Capability{UserID: "u2", Email: "y@iastate.edu", Role: models.RoleUser}
	admin    = models.Capability{UserID: "a1", Email: "admin@iastate.edu", Role: models.RoleAdmin}
)

type fixture struct {
	svc     *Service
	catalog *buildings.Catalog
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log := zap.NewNop()
	catalog := buildings.NewCatalog(buildings.NewMemoryStore(), buildings.Options{
		PlaceholderImage:     placeholder,
		PlaceholderFloorPlan: placeholder,
	}, log)
	_, _, err := catalog.Seed(context.Background(), buildings.SeedBuildings)
	require.NoError(t, err)

	dir := users.NewDirectory(users.NewMemoryStore(), true, log)
	return fixture{svc: NewService(NewMemoryStore(), dir, catalog, placeholder, log), catalog: catalog}
}

func engineeringLoop() CreateRequest {
	return CreateRequest{
		Name:         "Engineering Loop",
		BuildingKeys: []string{"carver", "coover"},
		OwnerEmail:   "x@iastate.edu",
	}
}

func TestCreateAndMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tour, err := f.svc.Create(ctx, models.Capability{}, engineeringLoop())
	require.NoError(t, err)
	assert.Equal(t, 2, tour.StopCount())
	assert.NotEmpty(t, tour.TourID)
	assert.Equal(t, "x@iastate.edu", tour.OwnerEmail)

	moved, err := f.svc.MoveStop(ctx, owner, tour.TourID, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"coover", "carver"}, moved.BuildingKeys)

	stored, err := f.svc.Get(ctx, tour.TourID)
	require.NoError(t, err)
	assert.Equal(t, []string{"coover", "carver"}, stored.BuildingKeys)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for field, mutate := range map[string]func(*CreateRequest){
		"name":              func(r *CreateRequest) { r.Name = "  " },
		"buildingIds":       func(r *CreateRequest) { r.BuildingKeys = []string{} },
		"ownerEmail":        func(r *CreateRequest) { r.OwnerEmail = "" },
		"estimatedDuration": func(r *CreateRequest) { d := -5; r.EstimatedDuration = &d },
	} {
		req := engineeringLoop()
		mutate(&req)
		_, err := f.svc.Create(ctx, models.Capability{}, req)
		var de *errs.Error
		require.True(t, errors.As(err, &de), field)
		assert.Equal(t, errs.KindValidation, de.Kind, field)
		assert.Equal(t, field, de.Field)
	}
}

func TestCreateAcceptsUnknownBuildings(t *testing.T) {
	f := newFixture(t)
	req := engineeringLoop()
	req.BuildingKeys = []string{" Not-Built-Yet ", "carver"}

	tour, err := f.svc.Create(context.Background(), models.Capability{}, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"not-built-yet", "carver"}, tour.BuildingKeys)
}

func TestCreateForSomeoneElse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, stranger, engineeringLoop())
	assert.True(t, errors.Is(err, errs.ErrPermission))

	tour, err := f.svc.Create(ctx, admin, engineeringLoop())
	require.NoError(t, err)
	assert.Equal(t, "x@iastate.edu", tour.OwnerEmail)

	req := engineeringLoop()
	req.OwnerEmail = ""
	mine, err := f.svc.Create(ctx, stranger, req)
	require.NoError(t, err)
	assert.Equal(t, "y@iastate.edu", mine.OwnerEmail)
}

func TestResolveStopsToleratesDeletedBuilding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour, err := f.svc.Create(ctx, owner, engineeringLoop())
	require.NoError(t, err)

	require.NoError(t, f.catalog.Delete(ctx, "carver"))

	_, stops, err := f.svc.ResolveStops(ctx, tour.TourID)
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.True(t, stops[0].Missing)
	assert.Equal(t, "carver", stops[0].Key)
	assert.Equal(t, "carver", stops[0].Building.Name)
	assert.Equal(t, placeholder, stops[0].Building.Image)
	assert.False(t, stops[1].Missing)
	assert.Equal(t, "Coover Hall", stops[1].Building.Name)
}

func TestRemoveLastStopKeepsTour(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := engineeringLoop()
	req.BuildingKeys = []string{"library"}
	tour, err := f.svc.Create(ctx, owner, req)
	require.NoError(t, err)

	_, err = f.svc.RemoveStop(ctx, owner, tour.TourID, 0)
	assert.True(t, errors.Is(err, errs.ErrInvalidOperation))

	stored, err := f.svc.Get(ctx, tour.TourID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.StopCount())

	_, err = f.svc.Update(ctx, owner, tour.TourID, models.TourPatch{BuildingKeys: models.Some([]string{})})
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestFailedEditLeavesStoredTour(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour, err := f.svc.Create(ctx, owner, engineeringLoop())
	require.NoError(t, err)

	_, err = f.svc.MoveStop(ctx, owner, tour.TourID, 0, 7)
	assert.True(t, errors.Is(err, errs.ErrIndexOutOfRange))

	stored, err := f.svc.Get(ctx, tour.TourID)
	require.NoError(t, err)
	assert.Equal(t, []string{"carver", "coover"}, stored.BuildingKeys)
}

func TestNonOwnerSeesNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour, err := f.svc.Create(ctx, owner, engineeringLoop())
	require.NoError(t, err)

	_, err = f.svc.AddStop(ctx, stranger, tour.TourID, "library")
	var de *errs.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, errs.KindNotFound, de.Kind)
	assert.True(t, errors.Is(f.svc.Delete(ctx, stranger, tour.TourID), errs.ErrNotFound))
	assert.True(t, errors.Is(f.svc.Delete(ctx, models.Capability{}, tour.TourID), errs.ErrNotFound))

	added, err := f.svc.AddStop(ctx, admin, tour.TourID, "library")
	require.NoError(t, err)
	assert.Equal(t, 3, added.StopCount())
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour, err := f.svc.Create(ctx, owner, engineeringLoop())
	require.NoError(t, err)

	d := 45
	updated, err := f.svc.Update(ctx, owner, tour.TourID, models.TourPatch{
		Description:       models.Some(" A walk past the engineering halls "),
		EstimatedDuration: models.Some(&d),
		Tags:              models.Some([]string{"engineering", " "}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Engineering Loop", updated.Name)
	assert.Equal(t, "A walk past the engineering halls", updated.Description)
	require.NotNil(t, updated.EstimatedDuration)
	assert.Equal(t, 45, *updated.EstimatedDuration)
	assert.Equal(t, []string{"engineering"}, updated.Tags)

	require.NoError(t, f.svc.Delete(ctx, owner, tour.TourID))
	_, err = f.svc.Get(ctx, tour.TourID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	_, err = f.catalog.Get(ctx, "carver")
	assert.NoError(t, err)
}

func TestTourLocksReleased(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour, err := f.svc.Create(ctx, owner, engineeringLoop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = f.svc.MoveStop(ctx, owner, tour.TourID, 0, 1)
			_, _ = f.svc.AddStop(ctx, owner, fmt.Sprintf("missing-%d", i), "carver")
		}(i)
	}
	wg.Wait()

	stored, err := f.svc.Get(ctx, tour.TourID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.StopCount())

	require.NoError(t, f.svc.Delete(ctx, owner, tour.TourID))
	assert.Error(t, f.svc.Delete(ctx, owner, tour.TourID))

	f.svc.mu.Lock()
	defer f.svc.mu.Unlock()
	assert.Empty(t, f.svc.locks)
}

func TestListByOwnerNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		f.svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		tour, err := f.svc.Create(ctx, owner, engineeringLoop())
		require.NoError(t, err)
		ids = append(ids, tour.TourID)
	}

	list, err := f.svc.ListByOwner(ctx, "X@iastate.edu")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].TourID)
	assert.Equal(t, ids[0], list[2].TourID)

	none, err := f.svc.ListByOwner(ctx, "nobody@iastate.edu")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRenderSheetAndQR(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tour, err := f.svc.Create(ctx, owner, engineeringLoop())
	require.NoError(t, err)
	require.NoError(t, f.catalog.Delete(ctx, "coover"))

	tour, stops, err := f.svc.ResolveStops(ctx, tour.TourID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderSheet(&buf, tour, stops, "http://campus.test/tours/"+tour.TourID))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	png, err := ShareQR("http://campus.test/tours/" + tour.TourID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
