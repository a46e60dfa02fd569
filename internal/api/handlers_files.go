// handlers_files.go - Upload and file management handlers
package api

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/pdfmaster/backend/internal/config"
	"github.com/pdfmaster/backend/internal/models"
	"github.com/pdfmaster/backend/internal/store"
)

// FilesHandlerImpl implements the FilesHandler interface
type FilesHandlerImpl struct {
	store  *store.Store
	config *config.AppConfig
	logger *logrus.Logger
}

// NewFilesHandler creates a new files handler instance
func NewFilesHandler(st *store.Store, cfg *config.AppConfig, logger *logrus.Logger) FilesHandler {
	return &FilesHandlerImpl{
		store:  st,
		config: cfg,
		logger: logger,
	}
}

// HandleUpload accepts one or more files as multipart form-data under "files"
func (h *FilesHandlerImpl) HandleUpload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("no files provided", err)
	}

	files := form.File["files"]
	if len(files) == 0 {
		return NewBadRequestError("no files selected", nil)
	}

	saved := make([]*models.Artifact, 0, len(files))
	for _, fh := range files {
		art, err := saveFormFile(h.store, h.config, fh)
		if err != nil {
			return err
		}
		saved = append(saved, art)
	}

	h.logger.WithField("count", len(saved)).Info("files uploaded")

	return respond(c, http.StatusCreated, "Files uploaded successfully", map[string]any{
		"files": saved,
		"count": len(saved),
	})
}

// HandleRecentFiles returns stored artifacts, newest first
func (h *FilesHandlerImpl) HandleRecentFiles(c echo.Context) error {
	limit := h.config.Storage.MaxRecentFiles
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return NewValidationError("limit")
		}
		limit = n
	}

	files := h.store.List(limit)

	return respond(c, http.StatusOK, "Recent files retrieved", map[string]any{
		"files": files,
		"count": len(files),
	})
}

// HandleGetFile returns metadata for a specific artifact
func (h *FilesHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	art, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return respond(c, http.StatusOK, "File retrieved", art)
}

// HandleDeleteFile removes an artifact from disk and the registry
func (h *FilesHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}

	return respond(c, http.StatusOK, "File deleted successfully", nil)
}

// HandleStorageStats reports per-category disk usage of the session root
func (h *FilesHandlerImpl) HandleStorageStats(c echo.Context) error {
	stats := h.store.Stats()

	out := make(map[string]any, len(stats))
	for name, s := range stats {
		out[name] = map[string]any{
			"files":      s.Files,
			"size_bytes": s.SizeBytes,
			"size_mb":    float64(s.SizeBytes) / (1 << 20),
		}
	}

	return respond(c, http.StatusOK, "Storage stats retrieved", out)
}

// HandleCleanup deletes outputs and bundles older than the given age.
// Uploads and the session root itself are never touched; only teardown
// removes those.
func (h *FilesHandlerImpl) HandleCleanup(c echo.Context) error {
	maxAge := h.config.Cleanup.MaxAge
	if raw := c.FormValue("hours"); raw != "" {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || hours <= 0 {
			return NewValidationError("hours")
		}
		maxAge = time.Duration(hours * float64(time.Hour))
	}

	removed, freed := h.store.Sweep(maxAge)

	h.logger.WithFields(logrus.Fields{
		"removed":     removed,
		"freed_bytes": freed,
	}).Info("cleanup sweep finished")

	return respond(c, http.StatusOK, "Cleanup completed", map[string]any{
		"deleted_files": removed,
		"freed_bytes":   freed,
		"freed_mb":      float64(freed) / (1 << 20),
	})
}

// saveFormFile validates the extension and stores one uploaded file.
func saveFormFile(st *store.Store, cfg *config.AppConfig, fh *multipart.FileHeader) (*models.Artifact, error) {
	if fh.Filename == "" {
		return nil, NewValidationError("filename")
	}
	if !cfg.ExtensionAllowed(filepath.Ext(fh.Filename)) {
		return nil, NewUnsupportedMediaError(fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	art, err := st.SaveUpload(fh.Filename, src)
	if err != nil {
		return nil, NewInternalError("failed to save file", err)
	}
	return art, nil
}
