// handlers_security.go - Password protection handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/pdfmaster/backend/internal/config"
	"github.com/pdfmaster/backend/internal/models"
	"github.com/pdfmaster/backend/internal/ops"
	"github.com/pdfmaster/backend/internal/pdf"
	"github.com/pdfmaster/backend/internal/store"
)

// SecurityHandlerImpl implements the SecurityHandler interface
type SecurityHandlerImpl struct {
	store  *store.Store
	ops    *ops.Manager
	config *config.AppConfig
	logger *logrus.Logger
}

// NewSecurityHandler creates a new security handler instance
func NewSecurityHandler(st *store.Store, om *ops.Manager, cfg *config.AppConfig, logger *logrus.Logger) SecurityHandler {
	return &SecurityHandlerImpl{
		store:  st,
		ops:    om,
		config: cfg,
		logger: logger,
	}
}

func (h *SecurityHandlerImpl) savePDFUpload(c echo.Context) (*models.Artifact, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", NewBadRequestError("no PDF file provided", err)
	}
	password := c.FormValue("password")
	if password == "" {
		return nil, "", NewBadRequestError("password is required", nil)
	}
	art, err := saveFormFile(h.store, h.config, fh)
	if err != nil {
		return nil, "", err
	}
	return art, password, nil
}

// HandleProtect encrypts an uploaded PDF with the given password
func (h *SecurityHandlerImpl) HandleProtect(c echo.Context) error {
	in, password, err := h.savePDFUpload(c)
	if err != nil {
		return err
	}

	op := h.ops.Begin(models.OpProtect, []string{in.ID})

	outID, outPath, aerr := h.store.Allocate(models.CategoryOutputs, "protected.pdf")
	if aerr != nil {
		h.ops.Fail(op.ID, aerr.Error())
		return NewInternalError("failed to allocate output", aerr)
	}
	if err := pdf.Encrypt(in.Path, outPath, password, c.FormValue("owner_password")); err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to protect PDF", err)
	}

	art, err := h.store.RegisterOutput(outID, outPath, "protected.pdf")
	if err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewInternalError("failed to register output", err)
	}
	h.ops.Complete(op.ID, []string{art.ID})

	return respond(c, http.StatusOK, "PDF protected successfully", map[string]any{
		"file_id":      art.ID,
		"download_url": art.DownloadURL(),
	})
}

// HandleUnlock removes password protection from an uploaded PDF
func (h *SecurityHandlerImpl) HandleUnlock(c echo.Context) error {
	in, password, err := h.savePDFUpload(c)
	if err != nil {
		return err
	}

	op := h.ops.Begin(models.OpUnlock, []string{in.ID})

	outID, outPath, aerr := h.store.Allocate(models.CategoryOutputs, "unlocked.pdf")
	if aerr != nil {
		h.ops.Fail(op.ID, aerr.Error())
		return NewInternalError("failed to allocate output", aerr)
	}
	if err := pdf.Decrypt(in.Path, outPath, password); err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to unlock PDF, check password", err)
	}

	art, err := h.store.RegisterOutput(outID, outPath, "unlocked.pdf")
	if err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewInternalError("failed to register output", err)
	}
	h.ops.Complete(op.ID, []string{art.ID})

	return respond(c, http.StatusOK, "PDF unlocked successfully", map[string]any{
		"file_id":      art.ID,
		"download_url": art.DownloadURL(),
	})
}
