package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	"campusexplorer/errs"
	"campusexplorer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureOwnerCreatesPlaceholder(t *testing.T) {
	d := NewDirectory(NewMemoryStore(), true, zap.NewNop())
	ctx := context.Background()

	u, err := d.EnsureOwner(ctx, "  X@IaState.edu ")
	require.NoError(t, err)
	assert.Equal(t, "x@iastate.edu", u.Email)
	assert.Equal(t, "x", u.Name)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.True(t, u.Placeholder)
	assert.NotEmpty(t, u.UserID)
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("temp")))

	again, err := d.EnsureOwner(ctx, "x@iastate.edu")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, again.UserID)
}

func TestEnsureOwnerWithoutAutoCreate(t *testing.T) {
	d := NewDirectory(NewMemoryStore(), false, zap.NewNop())

	_, err := d.EnsureOwner(context.Background(), "nobody@iastate.edu")
	var de *errs.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, errs.KindValidation, de.Kind)
	assert.Equal(t, "ownerEmail", de.Field)
}

func TestEnsureOwnerConcurrent(t *testing.T) {
	d := NewDirectory(NewMemoryStore(), true, zap.NewNop())
	ctx := context.Background()

	ids := make(chan string, 4)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := d.EnsureOwner(ctx, "race@iastate.edu")
			assert.NoError(t, err)
			ids <- u.UserID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)
}

func TestNormalizeEmail(t *testing.T) {
	for _, bad := range []string{"", "   ", "plain", "@iastate.edu", "x@", "a@b@c"} {
		_, err := NormalizeEmail(bad)
		assert.True(t, errors.Is(err, errs.ErrValidation), bad)
	}
}

func TestLookupMissing(t *testing.T) {
	d := NewDirectory(NewMemoryStore(), true, zap.NewNop())
	_, err := d.Lookup(context.Background(), "ghost@iastate.edu")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}
