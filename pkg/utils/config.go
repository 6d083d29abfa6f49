package utils

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env from the working directory when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[config] .env ignored: %v", err)
	}
}

type CatalogConfig struct {
	AssetsDir    string
	ManifestPath string
	CDNBaseURL   string // empty when no remote location is configured
	Workers      int
}

func LoadCatalogConfig() CatalogConfig {
	cdn := os.Getenv("ICONS_CDN_BASE_URL")
	if cdn == "" {
		cdn = os.Getenv("CDN_BASE_URL")
	}

	workers, err := strconv.Atoi(os.Getenv("ICONS_WORKERS"))
	if err != nil || workers < 1 {
		workers = 1
	}

	return CatalogConfig{
		AssetsDir:    envOr("ICONS_ASSETS_DIR", "assets"),
		ManifestPath: envOr("ICONS_MANIFEST_PATH", "data/icons-manifest.json"),
		CDNBaseURL:   strings.TrimRight(strings.TrimSpace(cdn), "/"),
		Workers:      workers,
	}
}

type ServerConfig struct {
	Addr         string
	ManifestPath string
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         envOr("ICONS_HTTP_ADDR", ":8080"),
		ManifestPath: envOr("ICONS_MANIFEST_PATH", "data/icons-manifest.json"),
	}
}

// UploadConfig identifies the S3-compatible (R2) bucket the asset tree is
// mirrored into.
type UploadConfig struct {
	AccountID       string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
}

// MissingEnvError lists every required variable that was unset.
type MissingEnvError struct {
	Vars []string
}

func (e *MissingEnvError) Error() string {
	return "missing required environment: " + strings.Join(e.Vars, ", ")
}

// LoadUploadConfig reads the R2_* variables. All missing settings are
// reported together.
func LoadUploadConfig() (UploadConfig, error) {
	cfg := UploadConfig{
		AccountID:       strings.TrimSpace(os.Getenv("R2_ACCOUNT_ID")),
		Endpoint:        strings.TrimRight(strings.TrimSpace(os.Getenv("R2_ENDPOINT")), "/"),
		Region:          envOr("R2_REGION", "auto"),
		AccessKeyID:     strings.TrimSpace(os.Getenv("R2_ACCESS_KEY_ID")),
		SecretAccessKey: strings.TrimSpace(os.Getenv("R2_SECRET_ACCESS_KEY")),
		Bucket:          strings.TrimSpace(os.Getenv("R2_BUCKET")),
		Prefix:          strings.Trim(strings.TrimSpace(os.Getenv("R2_PREFIX")), "/"),
	}

	var missing []string
	if cfg.AccountID == "" && cfg.Endpoint == "" {
		missing = append(missing, "R2_ACCOUNT_ID (or R2_ENDPOINT)")
	}
	if cfg.AccessKeyID == "" {
		missing = append(missing, "R2_ACCESS_KEY_ID")
	}
	if cfg.SecretAccessKey == "" {
		missing = append(missing, "R2_SECRET_ACCESS_KEY")
	}
	if cfg.Bucket == "" {
		missing = append(missing, "R2_BUCKET")
	}
	if len(missing) > 0 {
		return cfg, &MissingEnvError{Vars: missing}
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://" + cfg.AccountID + ".r2.cloudflarestorage.com"
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
