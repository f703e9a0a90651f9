package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeledger/superadmin/internal/models"
	"github.com/tradeledger/superadmin/internal/repositories"
)

func TestAuditLogRepository_Create(t *testing.T) {
	freshTables(t)
	ctx := context.Background()
	repo := repositories.NewAuditLogRepository(testDB.DB)

	entry := &models.AuditEntry{
		Action:    models.AuditActionLoginSuccess,
		Category:  models.AuditCategoryAuth,
		Details:   "username=superadmin",
		IPAddress: "203.0.113.10",
		UserAgent: "integration-test",
		Success:   true,
	}

	created, err := repo.Create(ctx, entry)
	require.NoError(t, err)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", created.ID.String())
	assert.Equal(t, models.AuditActionLoginSuccess, created.Action)
	assert.Equal(t, models.AuditCategoryAuth, created.Category)
	assert.Equal(t, "username=superadmin", created.Details)
	assert.Equal(t, "203.0.113.10", created.IPAddress)
	assert.True(t, created.Success)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, 5*time.Second)
}

func TestAuditLogRepository_ListNewestFirst(t *testing.T) {
	freshTables(t)
	ctx := context.Background()
	repo := repositories.NewAuditLogRepository(testDB.DB)

	base := time.Now().Add(-1 * time.Hour).UTC()
	for i := 0; i < 3; i++ {
		_, err := SeedAuditEntry(ctx, testDB.Pool,
			models.AuditActionLoginFailedPassword, models.AuditCategoryAuth,
			"attempt", false, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	entries, err := repo.List(ctx, models.AuditFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedAt.After(entries[i-1].CreatedAt),
			"entries must be ordered newest first")
	}
}

func TestAuditLogRepository_ListFilters(t *testing.T) {
	freshTables(t)
	ctx := context.Background()
	repo := repositories.NewAuditLogRepository(testDB.DB)

	now := time.Now().UTC()
	_, err := SeedAuditEntry(ctx, testDB.Pool,
		models.AuditActionLoginSuccess, models.AuditCategoryAuth, "ok", true, now)
	require.NoError(t, err)
	_, err = SeedAuditEntry(ctx, testDB.Pool,
		models.AuditActionLoginFailedPassword, models.AuditCategoryAuth, "bad password", false, now)
	require.NoError(t, err)
	_, err = SeedAuditEntry(ctx, testDB.Pool,
		models.AuditActionDataRead, models.AuditCategoryCRUD, "entity=trades", true, now)
	require.NoError(t, err)

	t.Run("by category", func(t *testing.T) {
		entries, err := repo.List(ctx, models.AuditFilter{Category: models.AuditCategoryCRUD, Limit: 10})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.AuditActionDataRead, entries[0].Action)
	})

	t.Run("by success flag", func(t *testing.T) {
		failed := false
		entries, err := repo.List(ctx, models.AuditFilter{Success: &failed, Limit: 10})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.AuditActionLoginFailedPassword, entries[0].Action)
	})

	t.Run("by search over action and details", func(t *testing.T) {
		entries, err := repo.List(ctx, models.AuditFilter{Search: "trades", Limit: 10})
		require.NoError(t, err)
		require.Len(t, entries, 1)

		entries, err = repo.List(ctx, models.AuditFilter{Search: "login_", Limit: 10})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("combined", func(t *testing.T) {
		ok := true
		entries, err := repo.List(ctx, models.AuditFilter{
			Category: models.AuditCategoryAuth,
			Success:  &ok,
			Limit:    10,
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.AuditActionLoginSuccess, entries[0].Action)
	})

	t.Run("no match", func(t *testing.T) {
		entries, err := repo.List(ctx, models.AuditFilter{Search: "no-such-entry", Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestAuditLogRepository_Pagination(t *testing.T) {
	freshTables(t)
	ctx := context.Background()
	repo := repositories.NewAuditLogRepository(testDB.DB)

	base := time.Now().Add(-1 * time.Hour).UTC()
	for i := 0; i < 5; i++ {
		_, err := SeedAuditEntry(ctx, testDB.Pool,
			models.AuditActionLogout, models.AuditCategoryAuth,
			"page test", true, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	first, err := repo.List(ctx, models.AuditFilter{Limit: 2, Offset: 0})
	require.NoError(t, err)
	second, err := repo.List(ctx, models.AuditFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.NotEqual(t, first[1].ID, second[1].ID)
}

func TestAuditLogRepository_Count(t *testing.T) {
	freshTables(t)
	ctx := context.Background()
	repo := repositories.NewAuditLogRepository(testDB.DB)

	now := time.Now().UTC()
	for i := 0; i < 4; i++ {
		_, err := SeedAuditEntry(ctx, testDB.Pool,
			models.AuditActionLoginFailedTOTP, models.AuditCategoryAuth, "bad code", false, now)
		require.NoError(t, err)
	}
	_, err := SeedAuditEntry(ctx, testDB.Pool,
		models.AuditActionLoginSuccess, models.AuditCategoryAuth, "ok", true, now)
	require.NoError(t, err)

	total, err := repo.Count(ctx, models.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	failed := false
	failedCount, err := repo.Count(ctx, models.AuditFilter{Success: &failed})
	require.NoError(t, err)
	assert.Equal(t, int64(4), failedCount)

	// Count ignores pagination; only the filter narrows it.
	paged, err := repo.Count(ctx, models.AuditFilter{Limit: 1, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(5), paged)
}
