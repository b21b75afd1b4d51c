package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"discovrr/internal/database"
	"discovrr/internal/models"
)

// setupTestDB opens a migrated in-memory sqlite database private to the test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open("file:" + t.Name() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func seedProfile(t *testing.T, db *gorm.DB, id, name string) models.Profile {
	t.Helper()
	p := models.Profile{ID: id, DisplayName: name, Username: id}
	require.NoError(t, db.Create(&p).Error)
	return p
}
