package repository

import (
	"context"
	"path/filepath"
	"testing"

	"mediastore-checkout/internal/client"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.OpenDatabase("sqlite", filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, client.Migrate(db))
	require.NoError(t, NewProductRepository(db).Seed(context.Background()))
	return db
}
