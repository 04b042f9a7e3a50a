package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"inciq/internal/catalog"
	"inciq/internal/storage"
	"inciq/pkg/logger"
	"inciq/pkg/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ImportCatalogMsg is the payload published to the import queue when an
// admin uploads a catalog sheet.
type ImportCatalogMsg struct {
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id"`
	ObjectKey     string `json:"object_key"`
	FileName      string `json:"file_name"`
}

// ProcessImportMessage downloads the uploaded sheet from object storage,
// parses it, and upserts the catalog entries. Errors are returned so the
// worker's retry/DLQ handling takes over.
func ProcessImportMessage(ctx context.Context, client *s3.Client, catalogStore store.CatalogStore, body string) error {
	var data ImportCatalogMsg
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return fmt.Errorf("failed to unmarshal import message: %w", err)
	}
	if data.ObjectKey == "" {
		return fmt.Errorf("import message has no object key")
	}

	logger.Info("Processing catalog import", "correlation_id", data.CorrelationID, "file", data.FileName)

	raw, err := storage.GetFile(ctx, client, data.ObjectKey)
	if err != nil {
		return fmt.Errorf("failed to download catalog sheet: %w", err)
	}

	entries, err := catalog.ParseCSV(raw)
	if err != nil {
		return fmt.Errorf("failed to parse catalog sheet: %w", err)
	}

	if err := catalog.Import(ctx, catalogStore, entries); err != nil {
		return fmt.Errorf("failed to import catalog entries: %w", err)
	}

	// Sanity read-back so collection sizes after the import land in the log.
	snap, err := store.LoadSnapshot(ctx, catalogStore)
	if err != nil {
		logger.Warn("Failed to read catalog back after import", "err", err)
	} else {
		logger.Info("Catalog collections after import",
			"ingredients", len(snap.Ingredients),
			"branded", len(snap.Branded),
			"suppliers", len(snap.Suppliers),
		)
	}

	logger.Info("Catalog import done", "correlation_id", data.CorrelationID, "entries", len(entries))
	return nil
}
