package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mkarlsen/chorecoin/internal/backup"
	"github.com/mkarlsen/chorecoin/internal/database"
	"github.com/mkarlsen/chorecoin/internal/logging"
	"github.com/mkarlsen/chorecoin/internal/server"
)

func main() {
	port := os.Getenv("CHORECOIN_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CHORECOIN_DB_PATH")
	if dbPath == "" {
		dbPath = "chorecoin.db"
	}

	logger := logging.Setup(os.Getenv("CHORECOIN_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, logger)

	manager := srv.NewSnapshotManager(snapshotConfig(dbPath))
	if manager.Enabled() {
		ctx, cancelSnapshots := context.WithCancel(context.Background())
		defer cancelSnapshots()
		manager.Start(ctx)
		defer manager.Stop()
		logger.Info("encrypted snapshots enabled")
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("chorecoin running", "addr", "http://localhost:"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func snapshotConfig(dbPath string) backup.Config {
	hour, _ := strconv.Atoi(os.Getenv("CHORECOIN_SNAPSHOT_HOUR"))
	retention, _ := strconv.Atoi(os.Getenv("CHORECOIN_SNAPSHOT_RETENTION_DAYS"))
	return backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("CHORECOIN_S3_ENDPOINT"),
			Bucket:    os.Getenv("CHORECOIN_S3_BUCKET"),
			Region:    os.Getenv("CHORECOIN_S3_REGION"),
			AccessKey: os.Getenv("CHORECOIN_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("CHORECOIN_S3_SECRET_KEY"),
		},
		DBPath:        dbPath,
		Passphrase:    os.Getenv("CHORECOIN_SNAPSHOT_PASSPHRASE"),
		ScheduleHour:  hour,
		RetentionDays: retention,
	}
}
