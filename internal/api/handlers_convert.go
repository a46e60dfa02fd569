// handlers_convert.go - Format conversion handlers
package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/pdfmaster/backend/internal/config"
	"github.com/pdfmaster/backend/internal/models"
	"github.com/pdfmaster/backend/internal/ops"
	"github.com/pdfmaster/backend/internal/pdf"
	"github.com/pdfmaster/backend/internal/store"
)

// ConvertHandlerImpl implements the ConvertHandler interface
type ConvertHandlerImpl struct {
	store  *store.Store
	ops    *ops.Manager
	config *config.AppConfig
	logger *logrus.Logger
}

// NewConvertHandler creates a new conversion handler instance
func NewConvertHandler(st *store.Store, om *ops.Manager, cfg *config.AppConfig, logger *logrus.Logger) ConvertHandler {
	return &ConvertHandlerImpl{
		store:  st,
		ops:    om,
		config: cfg,
		logger: logger,
	}
}

// HandleImageToPDF builds a PDF with one page per uploaded image
func (h *ConvertHandlerImpl) HandleImageToPDF(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("no image files provided", err)
	}
	files := form.File["files"]
	if len(files) == 0 {
		return NewBadRequestError("no image files provided", nil)
	}

	inputs := make([]string, 0, len(files))
	inputIDs := make([]string, 0, len(files))
	for _, fh := range files {
		if strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			return NewBadRequestError("expected image files, got a PDF", nil)
		}
		art, err := saveFormFile(h.store, h.config, fh)
		if err != nil {
			return err
		}
		inputs = append(inputs, art.Path)
		inputIDs = append(inputIDs, art.ID)
	}

	op := h.ops.Begin(models.OpImageToPDF, inputIDs)

	outID, outPath, aerr := h.store.Allocate(models.CategoryOutputs, "converted.pdf")
	if aerr != nil {
		h.ops.Fail(op.ID, aerr.Error())
		return NewInternalError("failed to allocate output", aerr)
	}
	if err := pdf.ImagesToPDF(inputs, outPath); err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to convert images to PDF", err)
	}

	art, err := h.store.RegisterOutput(outID, outPath, "converted.pdf")
	if err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewInternalError("failed to register output", err)
	}
	h.ops.Complete(op.ID, []string{art.ID})

	return respond(c, http.StatusOK, "Images converted to PDF successfully", map[string]any{
		"file_id":      art.ID,
		"count":        len(inputs),
		"download_url": art.DownloadURL(),
	})
}
