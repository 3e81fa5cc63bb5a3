package database_test

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"catalog/internal/database"
	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate_SQLite(t *testing.T) {
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.Migrate(db))
	assert.NoError(t, database.Ping(db))
	assert.True(t, db.Migrator().HasTable(&models.Product{}))
	assert.True(t, db.Migrator().HasTable(&models.ProductTranslation{}))
}

func TestMigrate_CascadesTranslationsOnProductDelete(t *testing.T) {
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	p := models.Product{Translations: []models.ProductTranslation{
		{LanguageCode: "en", Name: "Lamp", Description: "Desk lamp"},
	}}
	require.NoError(t, db.Create(&p).Error)

	// Bypass the repository to exercise the foreign key itself.
	require.NoError(t, db.Exec("DELETE FROM products WHERE id = ?", p.ID).Error)

	var count int64
	require.NoError(t, db.Model(&models.ProductTranslation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open("oracle", "whatever")
	assert.Error(t, err)
}

func TestOpen_SQLiteUnopenablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "catalog.db")
	db, err := database.Open("sqlite", path)
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestOpen_GORMLogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	// A missing row is an expected 404, not a log line.
	var p models.Product
	err = db.First(&p, "id = ?", "missing").Error
	require.Error(t, err)
	assert.Empty(t, buf.String())

	// Failed statements are logged as structured warnings.
	require.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), "no_such_table")
}
