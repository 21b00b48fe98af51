package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kashyapn/inrhedge/internal/catalog"
	"github.com/kashyapn/inrhedge/internal/domain"
)

// CatalogSource selects where the ingest flow reads the bond sheet from.
const (
	SourceFile = "file"
	SourceS3   = "s3"
)

// CatalogConfig tells the ingest flow where the bond sheet lives.
type CatalogConfig struct {
	// Source is "file" for the local filesystem or "s3" for object storage.
	Source string
	// Path is the filesystem path or object key of the CSV sheet.
	Path string
}

// CatalogService loads the tradable bond sheet into the store and serves
// catalog queries.
type CatalogService struct {
	bonds  domain.BondStore
	blobs  domain.BlobReader
	cfg    CatalogConfig
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService. The blob reader may be nil when
// the configured source is the local filesystem.
func NewCatalogService(bonds domain.BondStore, blobs domain.BlobReader, cfg CatalogConfig, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		bonds:  bonds,
		blobs:  blobs,
		cfg:    cfg,
		logger: logger,
	}
}

// Ingest reads the configured bond sheet, parses it, and upserts every valid
// row into the store. Returns the number of bonds loaded.
func (s *CatalogService) Ingest(ctx context.Context) (int, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	bonds, err := catalog.ParseSheet(rc, s.logger)
	if err != nil {
		return 0, fmt.Errorf("catalog_service: parse sheet %q: %w", s.cfg.Path, err)
	}
	if len(bonds) == 0 {
		s.logger.WarnContext(ctx, "catalog sheet yielded no valid bonds",
			slog.String("path", s.cfg.Path),
		)
		return 0, nil
	}

	if err := s.bonds.UpsertBatch(ctx, bonds); err != nil {
		return 0, fmt.Errorf("catalog_service: store sheet %q: %w", s.cfg.Path, err)
	}

	s.logger.InfoContext(ctx, "catalog ingested",
		slog.String("source", s.cfg.Source),
		slog.String("path", s.cfg.Path),
		slog.Int("bonds", len(bonds)),
	)
	return len(bonds), nil
}

func (s *CatalogService) open(ctx context.Context) (io.ReadCloser, error) {
	switch s.cfg.Source {
	case SourceS3:
		if s.blobs == nil {
			return nil, fmt.Errorf("catalog_service: s3 source configured without blob reader: %w", domain.ErrInvalidInput)
		}
		rc, err := s.blobs.Get(ctx, s.cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("catalog_service: fetch sheet %q: %w", s.cfg.Path, err)
		}
		return rc, nil
	case SourceFile, "":
		f, err := os.Open(s.cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("catalog_service: open sheet %q: %w", s.cfg.Path, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("catalog_service: unknown catalog source %q: %w", s.cfg.Source, domain.ErrInvalidInput)
	}
}

// List returns catalog records matching the filter.
func (s *CatalogService) List(ctx context.Context, filter domain.BondFilter, opts domain.ListOpts) ([]domain.Bond, error) {
	bonds, err := s.bonds.List(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog_service: list bonds: %w", err)
	}
	return bonds, nil
}

// Get returns a single catalog record by ISIN.
func (s *CatalogService) Get(ctx context.Context, isin string) (domain.Bond, error) {
	bond, err := s.bonds.GetByISIN(ctx, isin)
	if err != nil {
		return domain.Bond{}, fmt.Errorf("catalog_service: get bond %q: %w", isin, err)
	}
	return bond, nil
}

// Count returns the catalog size.
func (s *CatalogService) Count(ctx context.Context) (int64, error) {
	n, err := s.bonds.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog_service: count bonds: %w", err)
	}
	return n, nil
}
