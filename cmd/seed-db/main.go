package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/Origonlabs/Api-Icons/internal/icons"
	"github.com/Origonlabs/Api-Icons/internal/manifest"
	"github.com/Origonlabs/Api-Icons/pkg/database"
	"github.com/Origonlabs/Api-Icons/pkg/utils"
)

func main() {
	utils.LoadDotEnv()
	cfg := utils.LoadCatalogConfig()

	manifestIn := flag.String("manifest", cfg.ManifestPath, "input manifest path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	m, err := manifest.Load(*manifestIn)
	if err != nil {
		log.Fatalf("load manifest failed: %v", err)
	}

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := icons.SaveManifest(ctx, db, m); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	log.Printf("✅ seeded %d icons (generated %s) into %s", m.Count, m.GeneratedAt.Format(time.RFC3339), dbCfg.Path)
}
