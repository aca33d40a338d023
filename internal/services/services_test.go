package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arsya371/apologyhub/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Apology{},
		&models.BlockedIP{},
		&models.AllowedIP{},
		&models.SecurityLog{},
		&models.Setting{},
		&models.ProfanityWord{},
		&models.ActivityLog{},
		&models.DailyStat{},
		&models.User{},
	)
	require.NoError(t, err)

	return db
}
