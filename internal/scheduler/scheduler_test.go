package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arsya371/apologyhub/internal/config"
	"github.com/arsya371/apologyhub/internal/edge"
	"github.com/arsya371/apologyhub/internal/models"
	"github.com/arsya371/apologyhub/internal/ratelimit"
	"github.com/arsya371/apologyhub/internal/services"
)

func TestStartStop(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.BlockedIP{}, &models.AllowedIP{}, &models.SecurityLog{}))

	secLog := services.NewSecurityLogService(db)
	blocklist := services.NewBlocklistService(db, edge.NewClient(config.EdgeConfig{}), secLog)
	allowlist := services.NewAllowlistService(db)

	s := New(blocklist, allowlist, ratelimit.NewLedger(), ratelimit.NewLimiter())
	require.NoError(t, s.Start())
	s.Stop()
}

func TestSweepAndReclaimRunDirectly(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.BlockedIP{}, &models.AllowedIP{}, &models.SecurityLog{}))

	secLog := services.NewSecurityLogService(db)
	blocklist := services.NewBlocklistService(db, edge.NewClient(config.EdgeConfig{}), secLog)
	allowlist := services.NewAllowlistService(db)
	ledger := ratelimit.NewLedger()
	limiter := ratelimit.NewLimiter()
	ledger.Record("10.4.0.1")

	s := New(blocklist, allowlist, ledger, limiter)
	s.sweepExpired()
	s.reclaimMemory()
}
