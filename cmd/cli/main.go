package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Origonlabs/Api-Icons/internal/icons"
	"github.com/Origonlabs/Api-Icons/internal/manifest"
	"github.com/Origonlabs/Api-Icons/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type iconListResponse struct {
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
	Items  []models.IconRecord `json:"items"`
}

type categoryListResponse struct {
	Items []icons.Category `json:"items"`
}

func main() {
	global := flag.NewFlagSet("iconhub", flag.ExitOnError)
	baseURL := global.String("api", envOr("ICONS_API_URL", defaultBaseURL), "API base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}
	rest := []string{}
	if len(args) > 2 {
		rest = args[2:]
	}

	client := &http.Client{Timeout: 15 * time.Second}
	base := strings.TrimRight(*baseURL, "/")

	switch cmd {
	case "icons":
		handleIcons(ctx, client, base, sub, rest)
	case "categories":
		handleCategories(ctx, client, base, sub)
	case "manifest":
		handleManifest(ctx, client, base, sub, rest)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleIcons(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "search":
		fs := flag.NewFlagSet("icons search", flag.ExitOnError)
		query := fs.String("q", "", "search query")
		category := fs.String("category", "", "category slug")
		style := fs.String("style", "", "style filter (regular, filled, light, bold, outline)")
		size := fs.Int("size", 0, "pixel size filter")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/icons")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		if *query != "" {
			qv.Set("q", *query)
		}
		if *category != "" {
			qv.Set("category", *category)
		}
		if *style != "" {
			qv.Set("style", *style)
		}
		if *size > 0 {
			qv.Set("size", fmt.Sprintf("%d", *size))
		}
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))
		u.RawQuery = qv.Encode()

		var resp iconListResponse
		if err := doJSON(ctx, client, u.String(), &resp); err != nil {
			log.Fatalf("search failed: %v", err)
		}
		printJSON(resp)
	case "show":
		fs := flag.NewFlagSet("icons show", flag.ExitOnError)
		id := fs.String("id", "", "icon id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("icon id is required")
		}

		var resp models.IconRecord
		if err := doJSON(ctx, client, baseURL+"/icons/"+url.PathEscape(*id), &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: iconhub icons <search|show>")
	}
}

func handleCategories(ctx context.Context, client *http.Client, baseURL, sub string) {
	if sub != "" && sub != "list" {
		log.Fatal("usage: iconhub categories [list]")
	}
	var resp categoryListResponse
	if err := doJSON(ctx, client, baseURL+"/categories", &resp); err != nil {
		log.Fatalf("categories failed: %v", err)
	}
	for _, c := range resp.Items {
		fmt.Printf("%-32s %5d  %s\n", c.Slug, c.Count, c.Name)
	}
}

func handleManifest(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "fetch":
		fs := flag.NewFlagSet("manifest fetch", flag.ExitOnError)
		out := fs.String("out", "data/icons-manifest.json", "output manifest path")
		_ = fs.Parse(args)

		var m models.Manifest
		if err := doJSON(ctx, client, baseURL+"/manifest.json", &m); err != nil {
			log.Fatalf("fetch failed: %v", err)
		}
		if m.Count != len(m.Icons) {
			log.Fatalf("fetch failed: count %d does not match %d icons", m.Count, len(m.Icons))
		}
		if err := manifest.Write(*out, m); err != nil {
			log.Fatalf("write manifest failed: %v", err)
		}
		log.Printf("✅ fetched %d icons (generated %s) to %s", m.Count, m.GeneratedAt.Format(time.RFC3339), *out)
	default:
		log.Fatal("usage: iconhub manifest fetch")
	}
}

func doJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s failed: %s", endpoint, strings.TrimSpace(string(data)))
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func printUsage() {
	fmt.Println("iconhub [-api URL] <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  icons search|show")
	fmt.Println("  categories list")
	fmt.Println("  manifest fetch")
}
