package jobs

import (
	"context"
	"strings"
	"testing"
	"time"

	"buddhist-lent/pledgeboard/internal/db"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *storage.LocalStore) {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	store, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return gdb, store
}

func save(t *testing.T, store *storage.LocalStore, key string) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), key, strings.NewReader("img"), 3, "image/jpeg"))
}

func keys(t *testing.T, store *storage.LocalStore) []string {
	t.Helper()
	objs, err := store.List(context.Background(), "")
	require.NoError(t, err)
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Key
	}
	return out
}

func TestOrphanSweepJob_RemovesOnlyOldUnreferencedImages(t *testing.T) {
	gdb, store := setup(t)
	ctx := context.Background()

	for _, k := range []string{"form-returns/a.jpg", "form-returns/b.jpg", "form-returns/orphan.jpg", "profiles/me.png", "profiles/old.png"} {
		save(t, store, k)
	}
	require.NoError(t, gdb.Create(&gormModels.FormReturn{
		OrganizationName: "Org", Phone: "0812345678", SignerCount: 3,
		Image1: "form-returns/a.jpg", Image2: "form-returns/b.jpg",
	}).Error)
	img := "profiles/me.png"
	require.NoError(t, gdb.Create(&gormModels.User{Name: "u", Email: "u@example.com", PasswordHash: "x", Image: &img}).Error)

	job := NewOrphanSweepJob(store, repositories.NewFormReturnRepository(gdb), repositories.NewUserRepository(gdb), 24*time.Hour, nil)

	// Everything is inside the grace period.
	res, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Scanned)
	assert.Zero(t, res.Removed)

	job.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	res, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Removed)
	assert.ElementsMatch(t, []string{"form-returns/a.jpg", "form-returns/b.jpg", "profiles/me.png"}, keys(t, store))
	assert.Same(t, res, job.LastResult())
}

func TestResetTokenCleanupJob(t *testing.T) {
	gdb, _ := setup(t)
	ctx := context.Background()
	users := repositories.NewUserRepository(gdb)

	fresh := &gormModels.User{Name: "a", Email: "a@example.com", PasswordHash: "x"}
	stale := &gormModels.User{Name: "b", Email: "b@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, fresh))
	require.NoError(t, users.Create(ctx, stale))
	require.NoError(t, users.SetResetToken(ctx, fresh.ID, "hash-a", time.Now()))
	require.NoError(t, users.SetResetToken(ctx, stale.ID, "hash-b", time.Now().Add(-2*time.Hour)))

	job := NewResetTokenCleanupJob(users, time.Hour, nil)
	cleared, err := job.Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared)
	assert.False(t, job.LastRun().IsZero())

	_, err = users.GetByResetTokenHash(ctx, "hash-b")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	got, err := users.GetByResetTokenHash(ctx, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, got.ID)
}
