package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/snowreport/internal/adapters/driven/exec"
	"github.com/custodia-labs/snowreport/internal/adapters/driven/fetch"
	"github.com/custodia-labs/snowreport/internal/adapters/driven/pdf"
	"github.com/custodia-labs/snowreport/internal/adapters/driven/storage/blob"
	"github.com/custodia-labs/snowreport/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/snowreport/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/snowreport/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/snowreport/internal/adapters/driven/xlsx"
	"github.com/custodia-labs/snowreport/internal/connectors/monday"
	"github.com/custodia-labs/snowreport/internal/converters"
	"github.com/custodia-labs/snowreport/internal/converters/placeholder"
	"github.com/custodia-labs/snowreport/internal/converters/raster"
	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
	"github.com/custodia-labs/snowreport/internal/core/ports/driving"
	"github.com/custodia-labs/snowreport/internal/core/services"
)

// openIndex opens the location index backend named in settings. The returned
// function closes any connection it holds.
func openIndex(ctx context.Context, s domain.Settings) (driven.LocationIndex, func(), error) {
	switch s.Cache.Index {
	case domain.CacheIndexSQLite:
		store, err := sqlite.NewStore(s.Cache.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open location index: %w", err)
		}
		return store.LocationIndex(), func() { _ = store.Close() }, nil
	case domain.CacheIndexRedis:
		client, err := redis.NewClient(ctx, s.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewLocationIndex(client), func() { _ = client.Close() }, nil
	case domain.CacheIndexMemory:
		return memory.NewLocationIndex(), func() {}, nil
	default:
		return nil, nil, &domain.ConfigError{Field: "cache.index", Reason: fmt.Sprintf("unknown backend %q", s.Cache.Index)}
	}
}

// buildReport assembles the report pipeline from settings.
func buildReport(ctx context.Context, s domain.Settings, log *slog.Logger) (driving.ReportService, func(), error) {
	blobs, err := blob.NewFileStore(s.Cache.Dir)
	if err != nil {
		return nil, nil, &domain.ConfigError{Field: "cache.dir", Reason: err.Error()}
	}
	index, release, err := openIndex(ctx, s)
	if err != nil {
		return nil, nil, err
	}

	page := raster.PageFromSettings(s.Render)
	placeholders, err := placeholder.New(s.Placeholders, page)
	if err != nil {
		release()
		return nil, nil, err
	}

	runner := exec.NewRunner(s.Render.ToolTimeout())
	cache := services.NewAttachmentCache(fetch.New(s.Run.FetchTimeout(), s.API.RequestsPerSecond), blobs, index, log)
	conv := services.NewFormatConverter(converters.DefaultRegistry(s.Render, runner), placeholders, log)

	client := monday.NewClient(monday.ClientConfig{
		URL:               s.API.URL,
		Token:             s.API.Token,
		APIVersion:        s.API.Version,
		RequestsPerSecond: s.API.RequestsPerSecond,
		Timeout:           s.API.Timeout(),
	})

	svc := services.NewReportService(services.ReportServiceConfig{
		Source:    monday.NewSource(client, monday.OptionsFromSettings(s), log),
		Resolver:  services.NewDedupResolver(cache, conv, s.Run.Concurrency, log),
		Builder:   services.NewManifestBuilder(),
		PDF:       pdf.New(page, log),
		Sheet:     xlsx.New(log),
		BoardID:   s.Board.ID,
		OutputDir: s.Output.Dir,
		Logger:    log,
	})
	return svc, release, nil
}

// buildCleanup creates the maintenance service for the configured folders.
func buildCleanup(s domain.Settings, log *slog.Logger) (driving.CleanupService, error) {
	if s.Cache.Dir == "" || s.Output.Dir == "" {
		return nil, errors.New("cache and output directories must be set")
	}
	return services.NewCleanupService(s.Cache.Dir, s.Output.Dir, log), nil
}
