package routes

import (
	"encoding/json"
	"net/http"

	"inciq/internal/queue"
	"inciq/internal/server/middleware"
	"inciq/internal/storage"
	"inciq/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ImportCatalogHandler accepts a cleaned catalog CSV via multipart upload,
// stores it in object storage, and queues an import job for the worker.
func ImportCatalogHandler(c echo.Context) error {
	type importResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, importResponse{Message: "Missing catalog file"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, importResponse{Message: "Invalid catalog file"})
	}
	defer src.Close()

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	key, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate object key", "err", err)
		return c.JSON(http.StatusInternalServerError, importResponse{Message: "Internal server error"})
	}

	objectKey, err := storage.PutFile(ctx, app.S3, "catalogs", fileHeader.Filename, key, src)
	if err != nil {
		logger.Error("Failed to store catalog file", "err", err)
		return c.JSON(http.StatusInternalServerError, importResponse{Message: "Failed to store catalog file"})
	}

	correlationID, err := gonanoid.New()
	if err != nil {
		logger.Error("Failed to generate correlation id", "err", err)
		return c.JSON(http.StatusInternalServerError, importResponse{Message: "Internal server error"})
	}

	msg := queue.ImportCatalogMsg{
		Message:       "Catalog import requested",
		CorrelationID: correlationID,
		ObjectKey:     objectKey,
		FileName:      fileHeader.Filename,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to marshal import message", "err", err)
		return c.JSON(http.StatusInternalServerError, importResponse{Message: "Internal server error"})
	}

	if err := queue.PublishFIFO(app.Queue, queue.ImportQueue, msgBytes); err != nil {
		logger.Error("Failed to queue import job", "err", err)
		return c.JSON(http.StatusInternalServerError, importResponse{Message: "Failed to queue import job"})
	}

	logger.Info("Catalog import queued", "correlation_id", correlationID, "file", fileHeader.Filename)
	return c.JSON(http.StatusAccepted, importResponse{
		Message:       "Catalog import queued",
		CorrelationID: correlationID,
	})
}
