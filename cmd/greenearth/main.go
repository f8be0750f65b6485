package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"greenearth/internal/cache"
	"greenearth/internal/catalog"
	"greenearth/internal/config"
	"greenearth/internal/render"
	"greenearth/internal/storefront"
	"greenearth/internal/telemetry"
	"greenearth/internal/view"

	"github.com/joho/godotenv"
)

func main() {
	var apiURL string
	var cacheDir string
	var help bool

	flag.StringVar(&apiURL, "api", "", "Catalog API base URL (overrides CATALOG_BASE_URL)")
	flag.StringVar(&cacheDir, "cache-dir", "", "Directory for last known catalog snapshots (overrides CACHE_DIR)")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.BoolVar(&help, "h", false, "Show help message")
	flag.Parse()

	if help {
		showHelp()
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if apiURL != "" {
		cfg.Catalog.BaseURL = strings.TrimRight(apiURL, "/")
	}
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	shutdown, err := telemetry.Setup(ctx, cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("failed to flush telemetry: %v", err)
		}
	}()

	snapshots, err := cache.MakeCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to create snapshot cache: %w", err)
	}
	client, err := catalog.NewClient(cfg.Catalog, snapshots)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}
	renderer, err := render.New(out)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	sf := storefront.New(client, renderer, view.NewMoney(cfg.Currency.Symbol, cfg.Currency.Locale))
	slog.InfoContext(ctx, "starting storefront", "api", cfg.Catalog.BaseURL)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- sf.Run(ctx) }()

	type readResult struct {
		quit bool
		err  error
	}
	readDone := make(chan readResult, 1)
	go func() {
		quit, err := readCommands(in, out, func(intent storefront.Intent) error {
			return sf.Dispatch(ctx, intent)
		})
		readDone <- readResult{quit: quit, err: err}
	}()

	var inputErr error
	select {
	case res := <-readDone:
		inputErr = res.err
		if !res.quit && res.err == nil {
			// input ran out; let the last requests render before exiting
			if err := sf.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
				inputErr = err
			}
		}
	case <-ctx.Done():
	}
	cancel()
	return errors.Join(inputErr, <-runErr)
}

func showHelp() {
	fmt.Println("greenearth - plant storefront")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  greenearth [-api <url>] [-cache-dir <dir>]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -api         Catalog API base URL")
	fmt.Println("  -cache-dir   Directory for last known catalog snapshots")
	fmt.Println("  -help, -h    Show this help message")
	fmt.Println()
	fmt.Print(commandHelp)
}
