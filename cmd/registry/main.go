package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/cryptolog/registry/internal/api"
	"github.com/cryptolog/registry/internal/binance"
	"github.com/cryptolog/registry/internal/compute"
	"github.com/cryptolog/registry/internal/config"
	"github.com/cryptolog/registry/internal/database"
	"github.com/cryptolog/registry/internal/exchangerate"
	"github.com/cryptolog/registry/internal/export"
	"github.com/cryptolog/registry/internal/rates"
	"github.com/cryptolog/registry/internal/registry"
	"github.com/cryptolog/registry/internal/storage"
	"github.com/cryptolog/registry/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	app := &cli.App{
		Name:  "registry",
		Usage: "crypto transaction registry with historical price resolution",
		Commands: []*cli.Command{
			serveCommand(),
			exportCommand(),
			priceCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newResolver(cfg config.Config) *rates.Resolver {
	market := binance.NewClient(cfg.BinanceURL, cfg.HTTPClientTimeout)
	daily := exchangerate.NewClient(cfg.ExchangeRateURL, cfg.HTTPClientTimeout)
	return rates.NewResolver(market, daily)
}

func connectAndMigrate(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API server",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := config.Load()

			pool, err := connectAndMigrate(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			entries := registry.NewService(storage.NewPgRepository(pool), compute.NewEngine(newResolver(cfg)))
			if err := entries.Load(ctx); err != nil {
				return fmt.Errorf("loading entry list: %w", err)
			}

			if cfg.SheetsConfigured() {
				writer, err := export.NewSheetsWriter(ctx, cfg.SheetsSpreadsheetID, cfg.GoogleCredentialsJSON)
				if err != nil {
					return fmt.Errorf("configuring sheets export: %w", err)
				}
				exportWorker := worker.NewExportWorker(export.NewService(entries, writer), cfg.SheetsExportInterval)
				go exportWorker.Run(ctx)
			}

			if cfg.AdminAPIKey == "" {
				slog.Warn("ADMIN_API_KEY not set, mutating endpoints are unprotected")
			}

			srv := api.NewServer(cfg.HTTPPort, entries, cfg.AdminAPIKey)

			go func() {
				log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Printf("HTTP server error: %v", err)
					stop()
				}
			}()

			<-ctx.Done()
			log.Println("Shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("HTTP server shutdown error: %v", err)
			}

			log.Println("Shutdown complete")
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the stored entry list to a spreadsheet file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "output path; the extension picks the format (.xls for tab-separated, .xlsx for a workbook)",
				Value: export.FileName,
			},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			cfg := config.Load()

			pool, err := connectAndMigrate(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			entries := registry.NewService(storage.NewPgRepository(pool), compute.NewEngine(newResolver(cfg)))
			if err := entries.Load(ctx); err != nil {
				return fmt.Errorf("loading entry list: %w", err)
			}

			out := c.String("out")
			var data []byte
			if strings.HasSuffix(out, ".xlsx") {
				data, err = export.WriteWorkbook(entries.List(ctx))
				if err != nil {
					return err
				}
			} else {
				data = export.FileTSV(entries.List(ctx))
			}

			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			log.Printf("wrote %s", out)
			return nil
		},
	}
}

func priceCommand() *cli.Command {
	return &cli.Command{
		Name:      "price",
		Usage:     "look up an asset's historical USD and BRL price",
		ArgsUsage: "<asset>",
		Flags: []cli.Flag{
			&cli.TimestampFlag{
				Name:   "at",
				Usage:  "moment to price, RFC 3339",
				Layout: time.RFC3339,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one asset symbol")
			}
			asset := c.Args().First()

			at := time.Now().UTC()
			if t := c.Timestamp("at"); t != nil {
				at = *t
			}

			cfg := config.Load()
			quote := newResolver(cfg).AssetPrice(c.Context, asset, at)

			out, err := json.Marshal(quote)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
