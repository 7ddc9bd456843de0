// Command migrate-media copies locally stored media files to the remote
// media bucket and rewrites the database fields that point at them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/Skotchmaster/storefront/internal/media"
	"github.com/Skotchmaster/storefront/internal/migration"
	"github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so that deferred closes happen before
// main exits.
func run() int {
	mappingsPath := flag.String("mappings", "", "YAML file with collection/field/folder mappings (default: built-in set)")
	keepLocal := flag.Bool("keep-local", false, "keep local files after a successful migration")
	flag.Parse()

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.GCSBucket, "GCS_BUCKET")

	logger := logging.New(cfg.LogLevel).With("service", "migrate-media")
	slog.SetDefault(logger)

	mappings := migration.DefaultMappings()
	if *mappingsPath != "" {
		var err error
		if mappings, err = migration.LoadMappings(*mappingsPath); err != nil {
			log.Printf("mappings: %v", err)
			return 2
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Printf("db init error: %v", err)
		return 1
	}
	defer db.Close(gdb)

	var opts []option.ClientOption
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		log.Printf("gcs client: %v", err)
		return 1
	}
	defer client.Close()
	store := media.NewGCSStore(client, cfg.GCSBucket, cfg.MediaPublicBaseURL)

	runner := &migration.Runner{
		Store:      &migration.GormStore{DB: gdb},
		Media:      store,
		MediaRoot:  cfg.MediaRoot,
		RemoteBase: store.RemoteBase(),
		KeepLocal:  *keepLocal,
		Logger:     logger,
	}

	return migrate(ctx, os.Stdout, logger, runner, store, mappings)
}

type migrator interface {
	Run(ctx context.Context, mappings []migration.Mapping) (migration.Result, error)
}

type objectCounter interface {
	Count(ctx context.Context, folder string) (int, error)
}

// migrate runs the mappings, writes the operator summary to w and returns
// the exit code: 1 when the run aborted or any entity failed.
func migrate(ctx context.Context, w io.Writer, logger *slog.Logger, r migrator, counter objectCounter, mappings []migration.Mapping) int {
	for _, m := range mappings {
		logger.Info("migration_mapping", "mapping", m.String())
	}
	res, err := r.Run(ctx, mappings)
	fmt.Fprint(w, res.Summary())
	if err != nil {
		logger.Error("migration_aborted", "error", err)
		return 1
	}

	for _, m := range mappings {
		n, err := counter.Count(ctx, m.Folder)
		if err != nil {
			logger.Warn("count_failed", "folder", m.Folder, "error", err)
			continue
		}
		fmt.Fprintf(w, "  remote  %-20s %d objects\n", m.Folder, n)
	}

	if len(res.Failures) > 0 {
		return 1
	}
	return 0
}
