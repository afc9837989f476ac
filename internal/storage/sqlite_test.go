package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
	"github.com/Veraticus/spice-advisor/internal/service"
)

// Helper function to create test storage.
func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStore("  ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyString))
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))
}

func TestSQLiteStore_PendingMigrations(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	pending, err := store.PendingMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, ExpectedSchemaVersion)
	assert.Equal(t, 1, pending[0].Version)

	require.NoError(t, store.Migrate(ctx))

	pending, err = store.PendingMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	cfg := model.ProviderConfig{
		Provider:    model.ProviderGemini,
		APIKey:      "key-123",
		Model:       "gemini-1.5-flash",
		MaxTokens:   2048,
		Temperature: 0.7,
	}
	require.NoError(t, store.Save(ctx, service.KeyAIConfig, cfg))

	var loaded model.ProviderConfig
	found, err := store.Load(ctx, service.KeyAIConfig, &loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cfg, loaded)

	// Overwrite replaces the value.
	cfg.Model = "gemini-1.5-pro"
	require.NoError(t, store.Save(ctx, service.KeyAIConfig, cfg))
	found, err = store.Load(ctx, service.KeyAIConfig, &loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "gemini-1.5-pro", loaded.Model)
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	store := createTestStore(t)

	var history []model.ConversationMessage
	found, err := store.Load(context.Background(), "missing", &history)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, history)
}

func TestSQLiteStore_Backup(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", []string{"first"}, service.WithBackup()))
	require.NoError(t, store.Save(ctx, "k", []string{"second"}))

	var current, backup []string
	found, err := store.Load(ctx, "k", &current)
	require.NoError(t, err)
	require.True(t, found)
	found, err = store.LoadBackup(ctx, "k", &backup)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, []string{"second"}, current)
	assert.Equal(t, []string{"first"}, backup)
}

func TestSQLiteStore_DeleteAndKeys(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b", 2, service.WithBackup()))
	require.NoError(t, store.Save(ctx, "a", 1))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, store.Delete(ctx, "b"))

	var v int
	found, err := store.Load(ctx, "b", &v)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = store.LoadBackup(ctx, "b", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStore_DecodeError(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", "not a number"))

	var n int
	_, err := store.Load(ctx, "k", &n)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStorage))
}

func TestSQLiteStore_DriverFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewSQLiteStoreFromDB(db)
	ctx := context.Background()
	diskErr := errors.New("disk I/O error")

	mock.ExpectExec("INSERT INTO kv_store").
		WithArgs("ai_insights", "[]").
		WillReturnError(diskErr)

	err = store.Save(ctx, "ai_insights", []model.Insight{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStorage))
	assert.True(t, errors.Is(err, diskErr))

	var storageErr *common.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "save", storageErr.Op)
	assert.Equal(t, "ai_insights", storageErr.Key)

	mock.ExpectQuery("SELECT value FROM kv_store").
		WithArgs("ai_conversation_history").
		WillReturnError(diskErr)

	var history []model.ConversationMessage
	found, err := store.Load(ctx, "ai_conversation_history", &history)
	require.Error(t, err)
	assert.False(t, found)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO kv_store").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO kv_backups").WillReturnError(diskErr)
	mock.ExpectRollback()

	err = store.Save(ctx, "ai_config", model.ProviderConfig{}, service.WithBackup())
	require.Error(t, err)
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "backup", storageErr.Op)

	assert.NoError(t, mock.ExpectationsWereMet())
}
