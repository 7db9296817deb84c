package repo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_hub/internal/db"
	"github.com/Skotchmaster/product_hub/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return New(gdb)
}

func mustUser(t *testing.T, r *GormRepo, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "hash", IsActive: true}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func TestUsers(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()

	u := mustUser(t, r, "a@x.com")
	assert.NotZero(t, u.ID)

	exists, err := r.EmailExists(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = r.EmailExists(ctx, "b@x.com")
	require.NoError(t, err)
	assert.False(t, exists)

	err = r.CreateUser(ctx, &models.User{Email: "a@x.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := r.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsActive)

	_, err = r.GetUserByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, r.TouchLastLogin(ctx, u.ID, now))
	got, err = r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(now))

	got, err = r.UpdateProfile(ctx, u.ID, map[string]any{"first_name": "Ann", "phone_number": "+100"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)
	assert.Equal(t, "+100", got.PhoneNumber)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestProducts(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustUser(t, r, "owner@x.com")

	first := &models.Product{Name: "Widget", Description: "small blue widget", Price: decimal.RequireFromString("9.99"), Quantity: 3, CreatorID: owner.ID}
	second := &models.Product{Name: "Gadget", Description: "100% useful", Price: decimal.RequireFromString("1.50"), CreatorID: owner.ID}
	require.NoError(t, r.CreateProduct(ctx, first))
	require.NoError(t, r.CreateProduct(ctx, second))

	list, err := r.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, "owner@x.com", list[0].Creator.Email)

	got, err := r.GetProduct(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("9.99")))
	assert.Equal(t, owner.ID, got.CreatorID)

	got.Quantity = 7
	require.NoError(t, r.SaveProduct(ctx, got))
	got, err = r.GetProduct(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)

	byIDs, err := r.GetProductsByIDs(ctx, []uint{second.ID, 4242, first.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, second.ID, byIDs[0].ID)
	assert.Equal(t, first.ID, byIDs[1].ID)

	total, found, err := r.SearchProducts(ctx, "BLUE", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)

	total, _, err = r.SearchProducts(ctx, "%", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "wildcards are matched literally")

	require.NoError(t, r.DeleteProduct(ctx, first.ID))
	_, err = r.GetProduct(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.DeleteProduct(ctx, first.ID), ErrNotFound)
}

func TestSaveProductDoesNotRecreateDeleted(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustUser(t, r, "owner@x.com")

	p := &models.Product{Name: "Widget", Price: decimal.RequireFromString("2.00"), CreatorID: owner.ID}
	require.NoError(t, r.CreateProduct(ctx, p))

	loaded, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, r.DeleteProduct(ctx, p.ID))

	loaded.Name = "Widget v2"
	assert.ErrorIs(t, r.SaveProduct(ctx, loaded), ErrNotFound)

	_, err = r.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	list, err := r.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSaveProductWritesZeroValues(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustUser(t, r, "owner@x.com")

	p := &models.Product{Name: "Widget", Description: "blue", Price: decimal.RequireFromString("2.00"), Quantity: 5, CreatorID: owner.ID}
	require.NoError(t, r.CreateProduct(ctx, p))

	p.Description = ""
	p.Quantity = 0
	p.Price = decimal.Zero
	require.NoError(t, r.SaveProduct(ctx, p))

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Description)
	assert.Zero(t, got.Quantity)
	assert.True(t, got.Price.IsZero())
	assert.Equal(t, owner.ID, got.CreatorID)
}

func TestBlacklist(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.BlacklistJTI(ctx, "jti-1", 1, now.Add(time.Hour)))
	require.NoError(t, r.BlacklistJTI(ctx, "jti-1", 1, now.Add(time.Hour)), "second insert is a no-op")
	require.NoError(t, r.BlacklistJTI(ctx, "jti-old", 1, now.Add(-time.Hour)))

	ok, err := r.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := r.PruneBlacklist(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ok, err = r.IsBlacklisted(ctx, "jti-old")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunBlacklistPruner(t *testing.T) {
	t.Parallel()
	r := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, r.BlacklistJTI(ctx, "stale", 1, time.Now().Add(-time.Minute)))

	done := make(chan struct{})
	go func() {
		r.RunBlacklistPruner(ctx, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()

	assert.Eventually(t, func() bool {
		ok, err := r.IsBlacklisted(context.Background(), "stale")
		return err == nil && !ok
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}
