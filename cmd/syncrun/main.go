package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"go-listings/internal/config"
	"go-listings/internal/database"
	"go-listings/internal/features/integration"
	"go-listings/internal/features/property"
	"go-listings/internal/features/retention"
	"go-listings/internal/features/sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	id := flag.String("id", "", "integration id to sync")
	all := flag.Bool("all", false, "sync all active integrations")
	flag.Parse()

	if *id == "" && !*all {
		log.Fatal("usage: syncrun -id <integration-id> | -all")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(ctx)

	db := &database.MongodbDB{DB: client.Database(cfg.DBName)}

	zlog, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}

	integrationRepo := integration.NewIntegrationRepository(db)
	propertyRepo := property.NewPropertyRepository(db)
	logRepo := sync.NewSyncLogRepository(db)
	fetcher := sync.NewFetcher(cfg, zlog)
	archiver := retention.NewArchiver(cfg)
	retentionService := retention.NewRetentionService(integrationRepo, propertyRepo, archiver, zlog)
	syncService := sync.NewSyncService(integrationRepo, propertyRepo, logRepo, fetcher, retentionService, zlog)

	if *all {
		results, err := syncService.RunAll(ctx)
		if err != nil {
			log.Fatal(err)
		}
		for _, res := range results {
			printResult(&res)
		}
		return
	}

	res, err := syncService.RunOne(ctx, *id)
	if res != nil {
		printResult(res)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func printResult(res *sync.SyncResult) {
	fmt.Printf("source=%s status=%s processed=%d errors=%d deleted=%d duration=%dms\n",
		res.SourceID.Hex(), res.Status, res.Processed, res.ErrorCount, res.Deleted, res.DurationMs)
	for _, msg := range res.ErrorMessages {
		fmt.Printf("  - %s\n", msg)
	}
}
