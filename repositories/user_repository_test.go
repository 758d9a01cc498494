package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/e-learning-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "repo.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, &models.User{FullName: "Alice", Email: "alice@x.com", PasswordHash: "h", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", id.String())

	byEmail, err := repo.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
	assert.False(t, byEmail.IsActive)
	assert.Nil(t, byEmail.OTP)

	byID, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.FullName)

	_, err = repo.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Create(ctx, &models.User{FullName: "Alice 2", Email: "alice@x.com", PasswordHash: "h", Role: models.RoleStudent})
	assert.ErrorIs(t, err, ErrDuplicate)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUserRepository_UpdateCodeFields(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, &models.User{FullName: "Alice", Email: "alice@x.com", PasswordHash: "h", Role: models.RoleStudent})
	require.NoError(t, err)

	exp := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)
	n, err := repo.Update(ctx, id, map[string]any{"otp": "012345", "otp_expires_at": exp})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	u, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.True(t, u.HasPendingCode())
	assert.Equal(t, "012345", *u.OTP)
	assert.True(t, exp.Equal(*u.OTPExpiresAt))

	_, err = repo.Update(ctx, id, map[string]any{"otp": nil, "otp_expires_at": nil, "is_active": true})
	require.NoError(t, err)

	u, err = repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, u.HasPendingCode())
	assert.True(t, u.IsActive)
}

func TestUserRepository_ClearExpiredCodes(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	stale, err := repo.Create(ctx, &models.User{FullName: "Stale", Email: "stale@x.com", PasswordHash: "h", Role: models.RoleStudent})
	require.NoError(t, err)
	recent, err := repo.Create(ctx, &models.User{FullName: "Recent", Email: "recent@x.com", PasswordHash: "h", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = repo.Update(ctx, stale, map[string]any{"otp": "111111", "otp_expires_at": now.Add(-48 * time.Hour)})
	require.NoError(t, err)
	_, err = repo.Update(ctx, recent, map[string]any{"otp": "222222", "otp_expires_at": now.Add(-time.Hour)})
	require.NoError(t, err)

	n, err := repo.ClearExpiredCodes(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	u, err := repo.FindByID(ctx, stale)
	require.NoError(t, err)
	assert.Nil(t, u.OTP)
	assert.Nil(t, u.OTPExpiresAt)

	u, err = repo.FindByID(ctx, recent)
	require.NoError(t, err)
	assert.True(t, u.HasPendingCode())
}
