// Command docsync keeps a record store and its search index in step and
// serves the record and index administration API.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/custodia-labs/docsync/internal/adapters/driven/auth"
	"github.com/custodia-labs/docsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docsync/internal/adapters/driven/enrichment"
	"github.com/custodia-labs/docsync/internal/adapters/driven/search/bleve"
	"github.com/custodia-labs/docsync/internal/adapters/driven/search/meilisearch"
	"github.com/custodia-labs/docsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/core/services"
	"github.com/custodia-labs/docsync/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger.SetConsole(term.IsTerminal(int(os.Stderr.Fd())))

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	logger.SetVerbose(settings.Verbose)

	dataDir, err := resolveDataDir(settings.DataDir)
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer store.Close()

	index := newSearchIndex(settings.Engine, dataDir)
	defer index.Close()

	var enrichmentClient driven.EnrichmentClient
	if settings.Enrichment.IsConfigured() {
		provider := auth.NewConfigTokenProvider(configStore, services.KeyEnrichmentToken)
		enrichmentClient = enrichment.New(settings.Enrichment, provider)
	}

	coordinator := services.NewSyncCoordinator(index, store.RecordStore(), services.NewTransformer(), services.SyncConfig{
		IndexName: settings.Engine.IndexName,
	})

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Records:   services.NewRecordService(store.RecordStore(), coordinator, enrichmentClient),
		Search:    services.NewSearchService(index, settings.Engine.IndexName),
		Index:     coordinator,
		Health:    services.NewHealthService(index, enrichmentClient),
		Settings:  settingsService,
		Scheduler: services.NewScheduler(settingsService.SchedulerConfig(), store.SchedulerStore(), coordinator),
		Config:    configStore,
		Watcher:   configStore,
	})

	return cli.Execute(ctx)
}

// newSearchIndex builds the configured engine. The embedded index lives
// under dataDir/index.
func newSearchIndex(engine domain.SearchEngineSettings, dataDir string) driven.SearchIndex {
	if engine.Kind == domain.EngineEmbedded {
		logger.Debug("using embedded search index in %s", dataDir)
		return bleve.New(filepath.Join(dataDir, "index"))
	}
	logger.Debug("using meilisearch at %s", engine.Host)
	return meilisearch.New(engine.Host, engine.APIKey)
}

func resolveDataDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".docsync", "data"), nil
}
