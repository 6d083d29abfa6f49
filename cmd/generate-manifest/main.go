package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Origonlabs/Api-Icons/internal/catalog"
	"github.com/Origonlabs/Api-Icons/internal/manifest"
	"github.com/Origonlabs/Api-Icons/internal/watch"
	"github.com/Origonlabs/Api-Icons/pkg/utils"
)

func main() {
	utils.LoadDotEnv()
	cfg := utils.LoadCatalogConfig()

	var (
		assetsDir = flag.String("assets", cfg.AssetsDir, "asset root, one folder per category")
		outPath   = flag.String("out", cfg.ManifestPath, "output manifest path")
		cdnBase   = flag.String("cdn", cfg.CDNBaseURL, "remote base URL for cdnUrl (empty => null)")
		imageDir  = flag.String("image-dir", catalog.DefaultImageDir, "image subfolder inside each category")
		workers   = flag.Int("workers", cfg.Workers, "categories processed concurrently")
		watchMode = flag.Bool("watch", false, "keep running and rebuild when the asset tree changes")
		debounce  = flag.Duration("debounce", 500*time.Millisecond, "quiet period before a watch rebuild")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := catalog.NewBuilder(catalog.Config{
		AssetsDir:  *assetsDir,
		ImageDir:   *imageDir,
		CDNBaseURL: *cdnBase,
		Workers:    *workers,
	})

	generate := func() error {
		records, stats, err := builder.Build(ctx)
		if err != nil {
			return err
		}
		if err := manifest.Write(*outPath, manifest.New(records, time.Now())); err != nil {
			return err
		}
		log.Printf("✅ wrote %d icons from %d categories to %s (skipped %d, no descriptor %d, ignored files %d, id collisions %d)",
			stats.Files, stats.Categories-stats.SkippedCategories, *outPath,
			stats.SkippedCategories, stats.MissingDescriptors, stats.IgnoredFiles, stats.Collisions)
		return nil
	}

	if err := generate(); err != nil {
		log.Fatalf("generate failed: %v", err)
	}
	if !*watchMode {
		return
	}

	out, _ := filepath.Abs(*outPath)
	ignore := func(p string) bool {
		if abs, err := filepath.Abs(p); err == nil && abs == out {
			return true
		}
		base := filepath.Base(p)
		return strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp")
	}

	log.Printf("[watch] watching %s (ctrl-c to stop)", *assetsDir)
	if err := watch.Tree(ctx, *assetsDir, *debounce, ignore, generate); err != nil {
		log.Fatalf("watch failed: %v", err)
	}
	log.Println("[watch] stopped")
}
