package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hearthsim/go-ngdp/pkg/ngdp"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	region := pflag.String("region", envOr("NGDP_REGION", "eu"), "patch server region")
	product := pflag.String("product", envOr("NGDP_PRODUCT", "hsb"), "NGDP product code")
	cacheDir := pflag.String("cache-dir", os.Getenv("NGDP_CACHE_DIR"), "cache directory (default: per-user cache)")
	workers := pflag.Int("workers", ngdp.DefaultArchiveWorkers, "concurrent archive fetches")
	skipArchives := pflag.Bool("skip-archives", false, "list builds without fetching archives")
	verbose := pflag.BoolP("verbose", "v", false, "debug logging")
	pflag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := ngdp.New(*product, *region,
		ngdp.WithCache(ngdp.NewCache(*cacheDir)),
		ngdp.WithLogger(log),
	)
	log.Info("fetching versions", "product", *product, "region", *region, "cache", client.Cache().Dir())

	if err := run(ctx, client, log, *workers, *skipArchives); err != nil {
		log.Error("fetch failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *ngdp.Client, log *slog.Logger, workers int, skipArchives bool) error {
	stream, err := client.Versions(ctx)
	if err != nil {
		return err
	}

	for result := range stream {
		if result.Err != nil {
			return result.Err
		}
		v := result.Version
		fmt.Printf("Found build %s (%s)\n", v.VersionsName, v.BuildID)
		if skipArchives {
			continue
		}
		if err := fetchBuild(ctx, client, log, v, workers); err != nil {
			return err
		}
	}
	return nil
}

// fetchBuild pulls everything a build references: its data archives, its
// patch blob, and the patch config, cross-checking that the patch config
// names the same patch ekey as the build config.
func fetchBuild(ctx context.Context, client *ngdp.Client, log *slog.Logger, v *ngdp.Version, workers int) error {
	archives := ngdp.Archives(v.CDNConfig)
	log.Info("fetching archives", "build", v.BuildID, "count", len(archives), "workers", workers)
	if err := client.FetchArchives(ctx, v.CDNConfig, workers); err != nil {
		return fmt.Errorf("failed to fetch archives for build %s: %w", v.BuildID, err)
	}

	patchEkey := v.BuildConfig.Get("patch")
	if patchEkey == "" {
		log.Info("build has no patch", "build", v.BuildID)
		return nil
	}
	if _, err := client.GetPatch(ctx, patchEkey); err != nil {
		return fmt.Errorf("failed to fetch patch for build %s: %w", v.BuildID, err)
	}

	patchConfig, err := client.GetConfig(ctx, v.BuildConfig.Get("patch-config"))
	if err != nil {
		return fmt.Errorf("failed to fetch patch config for build %s: %w", v.BuildID, err)
	}
	if got := patchConfig.Get("patch"); got != patchEkey {
		return fmt.Errorf("patch config mismatch for build %s: %s != %s", v.BuildID, got, patchEkey)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
