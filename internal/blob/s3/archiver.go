package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kashyapn/inrhedge/internal/domain"
)

// multipartThreshold is the serialized payload size above which the archiver
// switches from a single PutObject to a managed multipart upload.
const multipartThreshold = 8 * 1024 * 1024

// ResultArchiveStore is the narrow slice of the scenario result store the
// archiver needs: time-ranged reads and the matching delete.
type ResultArchiveStore interface {
	ListBefore(ctx context.Context, before time.Time) ([]domain.ScenarioResult, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// ArchiveImpl implements domain.Archiver by querying the result store for old
// evaluations, serializing them to JSONL, uploading the file to S3, and then
// pruning the archived rows from the primary store.
type ArchiveImpl struct {
	writer  domain.BlobWriter
	results ResultArchiveStore
	logger  *slog.Logger
}

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(writer domain.BlobWriter, results ResultArchiveStore, logger *slog.Logger) *ArchiveImpl {
	return &ArchiveImpl{
		writer:  writer,
		results: results,
		logger:  logger.With(slog.String("component", "archiver")),
	}
}

// ArchiveResults archives all scenario results evaluated strictly before the
// cutoff to archive/scenario_results/YYYY-MM.jsonl and deletes them from the
// primary store. Rows are deleted only after the upload succeeds. Returns the
// number of archived records.
func (a *ArchiveImpl) ArchiveResults(ctx context.Context, before time.Time) (int64, error) {
	results, err := a.results.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive results query: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(results)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive results marshal: %w", err)
	}

	path := archivePath("scenario_results", before)
	if len(buf) > multipartThreshold {
		err = a.writer.PutMultipart(ctx, path, bytes.NewReader(buf), multipartThreshold)
	} else {
		err = a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson")
	}
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive results upload: %w", err)
	}

	deleted, err := a.results.DeleteBefore(ctx, before)
	if err != nil {
		return int64(len(results)), fmt.Errorf("s3blob: archive results prune: %w", err)
	}

	a.logger.InfoContext(ctx, "archived scenario results",
		slog.String("path", path),
		slog.Int("archived", len(results)),
		slog.Int64("deleted", deleted),
		slog.String("before", before.Format(time.RFC3339)),
	)

	return int64(len(results)), nil
}

// archivePath builds the S3 key for an archive file, partitioned by the
// year-month of the cutoff time.
//
//	archive/scenario_results/2025-01.jsonl
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*ArchiveImpl)(nil)
