// handlers_download.go - Artifact download handlers
package api

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/pdfmaster/backend/internal/store"
)

// DownloadHandlerImpl implements the DownloadHandler interface
type DownloadHandlerImpl struct {
	store  *store.Store
	logger *logrus.Logger
}

// NewDownloadHandler creates a new download handler instance
func NewDownloadHandler(st *store.Store, logger *logrus.Logger) DownloadHandler {
	return &DownloadHandlerImpl{
		store:  st,
		logger: logger,
	}
}

// HandleDownload serves a single file artifact by stored name
func (h *DownloadHandlerImpl) HandleDownload(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return NewValidationError("name")
	}

	art, err := h.store.Resolve(name)
	if err != nil {
		return NewNotFoundError("file", name)
	}
	if art.IsDir {
		return NewBadRequestError("artifact is a bundle, use the bundle download endpoint", nil)
	}

	return c.Attachment(art.Path, art.StoredName)
}

// HandleDownloadBundle streams a directory artifact as a zip archive
func (h *DownloadHandlerImpl) HandleDownloadBundle(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	art, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("bundle", id)
	}
	if !art.IsDir {
		return NewBadRequestError("artifact is a single file, use the file download endpoint", nil)
	}

	filename := fmt.Sprintf("%s.zip", art.Name)
	c.Response().Header().Set(echo.HeaderContentType, "application/zip")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().WriteHeader(http.StatusOK)

	if err := zipDirectory(c.Response(), art.Path); err != nil {
		// Headers are already sent; all we can do is log and cut the stream.
		h.logger.WithError(err).WithField("bundle", id).Error("streaming bundle failed")
		return nil
	}
	return nil
}

// zipDirectory writes a flat zip of the files directly under dir.
func zipDirectory(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading bundle directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := addZipEntry(zw, dir, entry.Name()); err != nil {
			return err
		}
	}
	return zw.Close()
}

func addZipEntry(zw *zip.Writer, dir, name string) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("adding %s to archive: %w", name, err)
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
