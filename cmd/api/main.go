package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/arsya371/apologyhub/internal/config"
	"github.com/arsya371/apologyhub/internal/database"
	"github.com/arsya371/apologyhub/internal/edge"
	"github.com/arsya371/apologyhub/internal/guard"
	"github.com/arsya371/apologyhub/internal/logger"
	"github.com/arsya371/apologyhub/internal/ratelimit"
	"github.com/arsya371/apologyhub/internal/scheduler"
	"github.com/arsya371/apologyhub/internal/server"
	"github.com/arsya371/apologyhub/internal/services"
	"github.com/arsya371/apologyhub/internal/version"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logDir := filepath.Join(filepath.Dir(cfg.DatabasePath), "logs")
	_ = os.MkdirAll(logDir, 0o755)
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "apologyhub.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	logger.WithFields(map[string]interface{}{"version": version.Full()}).Infof("starting %s", version.Name)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	edgeClient := edge.NewClient(cfg.Edge)
	secLog := services.NewSecurityLogService(db)
	blocklist := services.NewBlocklistService(db, edgeClient, secLog)
	allowlist := services.NewAllowlistService(db)
	ledger := ratelimit.NewLedger()
	limiter := ratelimit.NewLimiter()

	g := &guard.Guard{
		Ledger:    ledger,
		Limiter:   limiter,
		Blocklist: blocklist,
		Allowlist: allowlist,
		SecLog:    secLog,
		Notifier:  services.NewNotifierService(cfg.AlertURLs),
		Edge:      edgeClient,
		Security:  cfg.Security,
	}

	srv, err := server.New(db, cfg, g)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	sched := scheduler.New(blocklist, allowlist, ledger, limiter)
	if err := sched.Start(); err != nil {
		log.Fatalf("start scheduler: %v", err)
	}
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithFields(map[string]interface{}{"port": cfg.HTTPPort}).Info("http server listening")
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
