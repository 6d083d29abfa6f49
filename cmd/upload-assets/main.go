package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Origonlabs/Api-Icons/internal/upload"
	"github.com/Origonlabs/Api-Icons/pkg/utils"
)

func main() {
	utils.LoadDotEnv()
	catCfg := utils.LoadCatalogConfig()
	def := upload.DefaultOptions()

	var (
		assetsDir = flag.String("assets", catCfg.AssetsDir, "asset root to mirror")
		ext       = flag.String("ext", def.Extension, "only upload files with this suffix (empty => all files)")
		batchSize = flag.Int("batch", def.BatchSize, "files uploaded concurrently per batch")
		attempts  = flag.Int("attempts", def.MaxAttempts, "attempts per file before it is reported failed")
		baseDelay = flag.Duration("retry-delay", def.BaseDelay, "first retry delay, doubled per attempt")
		maxDelay  = flag.Duration("retry-max", def.MaxDelay, "retry delay cap")
		dryRun    = flag.Bool("dry-run", false, "list object keys without uploading")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *dryRun {
		files, err := upload.Discover(*assetsDir, *ext)
		if err != nil {
			log.Fatalf("discover failed: %v", err)
		}
		u := upload.New(nil, upload.Options{Prefix: os.Getenv("R2_PREFIX"), Extension: *ext})
		for _, f := range files {
			fmt.Println(u.Key(f))
		}
		log.Printf("✅ %d files would be uploaded", len(files))
		return
	}

	cfg, err := utils.LoadUploadConfig()
	if err != nil {
		log.Fatalf("config failed: %v", err)
	}

	client, err := upload.NewS3Client(ctx, cfg)
	if err != nil {
		log.Fatalf("s3 client failed: %v", err)
	}

	u := upload.New(client, upload.Options{
		Bucket:      cfg.Bucket,
		Prefix:      cfg.Prefix,
		Extension:   *ext,
		BatchSize:   *batchSize,
		MaxAttempts: *attempts,
		BaseDelay:   *baseDelay,
		MaxDelay:    *maxDelay,
	})

	log.Printf("[upload] mirroring %s into %s/%s", *assetsDir, cfg.Bucket, cfg.Prefix)
	rep, err := u.Run(ctx, *assetsDir)
	if err != nil {
		log.Fatalf("upload failed: %v", err)
	}

	for _, f := range rep.Failed {
		log.Printf("[upload] FAILED %s after %d attempts: %v", f.Key, f.Attempts, f.Err)
	}
	log.Printf("✅ run %s: %d uploaded, %d failed of %d in %s",
		rep.RunID, rep.Succeeded, len(rep.Failed), rep.Total, rep.Elapsed.Round(time.Millisecond))
	if len(rep.Failed) > 0 {
		os.Exit(1)
	}
}
