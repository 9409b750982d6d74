package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HookFox/app/repository"
	"github.com/ManuelReschke/HookFox/internal/pkg/archive"
	"github.com/ManuelReschke/HookFox/internal/pkg/config"
	"github.com/ManuelReschke/HookFox/internal/pkg/database"
	"github.com/ManuelReschke/HookFox/internal/pkg/env"
)

// archive exports all stored webhook events to S3 once and exits.
func main() {
	env.SetupEnvFile()

	cfg, err := config.LoadStorage()
	if err != nil {
		log.Fatal(err)
	}
	archiveCfg, err := archive.LoadConfig()
	if err != nil {
		log.Fatalf("[Archive] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(env.GetEnvInt("ARCHIVE_TIMEOUT", 600))*time.Second)
	defer cancel()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("[Database] %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	client, err := archive.NewClient(ctx, archiveCfg)
	if err != nil {
		log.Fatalf("[Archive] %v", err)
	}

	repo := repository.NewFactory(db).GetWebhookEventRepository()
	res, err := archive.NewExporter(repo, client, archiveCfg).Export(ctx)
	if err != nil {
		log.Errorf("[Archive] Export failed: %v", err)
		os.Exit(1)
	}

	log.Infof("[Archive] Done: %d events, %d bytes -> s3://%s/%s", res.Events, res.Bytes, res.Bucket, res.ObjectKey)
}
