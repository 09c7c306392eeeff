package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"

	"frictionstudy/internal/catalog"
	"frictionstudy/internal/config"
	"frictionstudy/internal/repository"
)

// seed validates an item catalog and prepares a mongo database for a study:
// stream indexes plus an "items" reference collection for analysis joins.
func main() {
	var (
		catalogPath string
		mongoURI    string
		dbName      string
		dryRun      bool
		dumpYAML    bool
	)

	cfg := config.Load()

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&catalogPath, "catalog", cfg.CatalogFile, "item catalog file (.json, .yaml); built-in catalog when empty")
	flagSet.StringVar(&mongoURI, "mongo-uri", cfg.MongoURI, "MongoDB connection string")
	flagSet.StringVar(&dbName, "db", cfg.MongoDB, "database name")
	flagSet.BoolVar(&dryRun, "dry-run", false, "validate and print the catalog without touching MongoDB")
	flagSet.BoolVar(&dumpYAML, "yaml", false, "print the catalog as YAML (a starting point for CATALOG_PATH)")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatal(err)
	}

	cat := catalog.Default()
	if catalogPath != "" {
		var err error
		if cat, err = catalog.Load(catalogPath); err != nil {
			log.Fatalf("Invalid catalog: %v", err)
		}
	}

	if dumpYAML {
		out, err := yaml.Marshal(map[string]interface{}{"items": cat.Items()})
		if err != nil {
			log.Fatalf("Failed to encode catalog: %v", err)
		}
		fmt.Print(string(out))
		return
	}

	fmt.Printf("Catalog: %d items\n", cat.Len())
	for _, item := range cat.Items() {
		fmt.Printf("  %4d  %-5s  %s\n", item.ID, item.AISuggestion, item.Text)
	}
	if dryRun {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(dbName)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	itemsColl := db.Collection("items")
	for _, item := range cat.Items() {
		_, err := itemsColl.ReplaceOne(ctx,
			bson.M{"_id": item.ID},
			bson.M{"_id": item.ID, "text": item.Text, "aiSuggestion": item.AISuggestion},
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			log.Fatalf("Failed to upsert item %d: %v", item.ID, err)
		}
	}

	fmt.Printf("Successfully seeded %d items into '%s'\n", cat.Len(), dbName)
}
