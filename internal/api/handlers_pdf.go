// handlers_pdf.go - PDF transformation handlers
package api

import (
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/pdfmaster/backend/internal/config"
	"github.com/pdfmaster/backend/internal/models"
	"github.com/pdfmaster/backend/internal/ops"
	"github.com/pdfmaster/backend/internal/pdf"
	"github.com/pdfmaster/backend/internal/store"
)

// inlineTextLimit caps how much extracted text is returned inline;
// the full text is always available through the download URL.
const inlineTextLimit = 5000

// PDFHandlerImpl implements the PDFHandler interface
type PDFHandlerImpl struct {
	store  *store.Store
	ops    *ops.Manager
	config *config.AppConfig
	logger *logrus.Logger
}

// NewPDFHandler creates a new PDF operations handler
func NewPDFHandler(st *store.Store, om *ops.Manager, cfg *config.AppConfig, logger *logrus.Logger) PDFHandler {
	return &PDFHandlerImpl{
		store:  st,
		ops:    om,
		config: cfg,
		logger: logger,
	}
}

// savePDFUpload stores the "file" form field, which must be a PDF.
func (h *PDFHandlerImpl) savePDFUpload(c echo.Context) (*models.Artifact, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, NewBadRequestError("no PDF file provided", err)
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return nil, NewUnsupportedMediaError(fh.Filename)
	}
	return saveFormFile(h.store, h.config, fh)
}

// finish registers an output file and completes the operation record.
func (h *PDFHandlerImpl) finish(opID, outID, outPath, displayName string) (*models.Artifact, error) {
	art, err := h.store.RegisterOutput(outID, outPath, displayName)
	if err != nil {
		h.ops.Fail(opID, err.Error())
		return nil, NewInternalError("failed to register output", err)
	}
	h.ops.Complete(opID, []string{art.ID})
	return art, nil
}

// HandleMerge concatenates two or more uploaded PDFs into one
func (h *PDFHandlerImpl) HandleMerge(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("no PDF files provided", err)
	}
	files := form.File["files"]
	if len(files) < 2 {
		return NewBadRequestError("at least 2 PDF files required for merging", nil)
	}

	inputs := make([]string, 0, len(files))
	inputIDs := make([]string, 0, len(files))
	for _, fh := range files {
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			return NewUnsupportedMediaError(fh.Filename)
		}
		art, err := saveFormFile(h.store, h.config, fh)
		if err != nil {
			return err
		}
		inputs = append(inputs, art.Path)
		inputIDs = append(inputIDs, art.ID)
	}

	op := h.ops.Begin(models.OpMerge, inputIDs)

	outID, outPath, err := h.store.Allocate(models.CategoryOutputs, "merged.pdf")
	if err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewInternalError("failed to allocate output", err)
	}
	if err := pdf.Merge(inputs, outPath); err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to merge PDFs", err)
	}

	art, aerr := h.finish(op.ID, outID, outPath, "merged.pdf")
	if aerr != nil {
		return aerr
	}
	return respond(c, http.StatusOK, "PDFs merged successfully", map[string]any{
		"file_id":      art.ID,
		"download_url": art.DownloadURL(),
	})
}

// HandleSplit extracts every page into its own file, bundled for download
func (h *PDFHandlerImpl) HandleSplit(c echo.Context) error {
	in, err := h.savePDFUpload(c)
	if err != nil {
		return err
	}

	op := h.ops.Begin(models.OpSplit, []string{in.ID})

	outID, outDir, err := h.store.AllocateDir(models.CategoryOutputs, "split")
	if err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewInternalError("failed to allocate output", err)
	}
	count, err := pdf.SplitPages(in.Path, outDir)
	if err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to split PDF", err)
	}

	art, aerr := h.finish(op.ID, outID, outDir, "split")
	if aerr != nil {
		return aerr
	}
	return respond(c, http.StatusOK, "PDF split successfully", map[string]any{
		"file_id":      art.ID,
		"pages":        count,
		"download_url": art.DownloadURL(),
	})
}

// HandleRotate rotates selected pages by a multiple of 90 degrees
func (h *PDFHandlerImpl) HandleRotate(c echo.Context) error {
	in, err := h.savePDFUpload(c)
	if err != nil {
		return err
	}

	angle := 90
	if raw := c.FormValue("angle"); raw != "" {
		angle, err = strconv.Atoi(raw)
		if err != nil {
			return NewValidationError("angle")
		}
	}
	if angle%90 != 0 {
		return NewValidationError("angle")
	}

	pages, err := h.optionalPageRange(c, in.Path)
	if err != nil {
		return err
	}

	op := h.ops.Begin(models.OpRotate, []string{in.ID})

	outID, outPath, aerr := h.store.Allocate(models.CategoryOutputs, "rotated.pdf")
	if aerr != nil {
		h.ops.Fail(op.ID, aerr.Error())
		return NewInternalError("failed to allocate output", aerr)
	}
	if err := pdf.Rotate(in.Path, outPath, angle, pages); err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to rotate PDF", err)
	}

	art, ferr := h.finish(op.ID, outID, outPath, "rotated.pdf")
	if ferr != nil {
		return ferr
	}
	return respond(c, http.StatusOK, "PDF rotated successfully", map[string]any{
		"file_id":      art.ID,
		"download_url": art.DownloadURL(),
	})
}

// HandleCompress rewrites the document through the optimizer
func (h *PDFHandlerImpl) HandleCompress(c echo.Context) error {
	in, err := h.savePDFUpload(c)
	if err != nil {
		return err
	}

	quality := c.FormValue("quality")
	if quality == "" {
		quality = "medium"
	}
	if !pdf.ValidQuality(quality) {
		return NewValidationError("quality")
	}

	op := h.ops.Begin(models.OpCompress, []string{in.ID})

	outID, outPath, aerr := h.store.Allocate(models.CategoryOutputs, "compressed.pdf")
	if aerr != nil {
		h.ops.Fail(op.ID, aerr.Error())
		return NewInternalError("failed to allocate output", aerr)
	}
	if err := pdf.Compress(in.Path, outPath, quality); err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to compress PDF", err)
	}

	art, ferr := h.finish(op.ID, outID, outPath, "compressed.pdf")
	if ferr != nil {
		return ferr
	}

	savings := 0.0
	if in.Size > 0 {
		savings = float64(in.Size-art.Size) / float64(in.Size) * 100
	}
	return respond(c, http.StatusOK, "PDF compressed successfully", map[string]any{
		"file_id":         art.ID,
		"original_size":   in.Size,
		"compressed_size": art.Size,
		"savings_percent": round2(savings),
		"download_url":    art.DownloadURL(),
	})
}

// HandleWatermark stamps translucent rotated text across every page
func (h *PDFHandlerImpl) HandleWatermark(c echo.Context) error {
	in, err := h.savePDFUpload(c)
	if err != nil {
		return err
	}

	text := c.FormValue("text")
	if text == "" {
		text = "WATERMARK"
	}
	opacity := 0.3
	if raw := c.FormValue("opacity"); raw != "" {
		opacity, err = strconv.ParseFloat(raw, 64)
		if err != nil || opacity <= 0 || opacity > 1 {
			return NewValidationError("opacity")
		}
	}
	angle := 45
	if raw := c.FormValue("angle"); raw != "" {
		angle, err = strconv.Atoi(raw)
		if err != nil {
			return NewValidationError("angle")
		}
	}

	op := h.ops.Begin(models.OpWatermark, []string{in.ID})

	outID, outPath, aerr := h.store.Allocate(models.CategoryOutputs, "watermarked.pdf")
	if aerr != nil {
		h.ops.Fail(op.ID, aerr.Error())
		return NewInternalError("failed to allocate output", aerr)
	}
	if err := pdf.Watermark(in.Path, outPath, text, opacity, angle); err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to add watermark", err)
	}

	art, ferr := h.finish(op.ID, outID, outPath, "watermarked.pdf")
	if ferr != nil {
		return ferr
	}
	return respond(c, http.StatusOK, "Watermark added successfully", map[string]any{
		"file_id":      art.ID,
		"download_url": art.DownloadURL(),
	})
}

// HandlePageNumbers stamps a page counter at a fixed position on every page
func (h *PDFHandlerImpl) HandlePageNumbers(c echo.Context) error {
	in, err := h.savePDFUpload(c)
	if err != nil {
		return err
	}

	format := c.FormValue("format")
	if format == "" {
		format = "{page}/{total}"
	}
	position := c.FormValue("position")
	if position == "" {
		position = "bottom-right"
	}
	if !pdf.ValidPosition(position) {
		return NewValidationError("position")
	}

	op := h.ops.Begin(models.OpPageNumbers, []string{in.ID})

	outID, outPath, aerr := h.store.Allocate(models.CategoryOutputs, "numbered.pdf")
	if aerr != nil {
		h.ops.Fail(op.ID, aerr.Error())
		return NewInternalError("failed to allocate output", aerr)
	}
	if err := pdf.AddPageNumbers(in.Path, outPath, format, position); err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to add page numbers", err)
	}

	art, ferr := h.finish(op.ID, outID, outPath, "numbered.pdf")
	if ferr != nil {
		return ferr
	}
	return respond(c, http.StatusOK, "Page numbers added successfully", map[string]any{
		"file_id":      art.ID,
		"download_url": art.DownloadURL(),
	})
}

// HandleExtractText pulls the plain text of all pages into a .txt artifact
func (h *PDFHandlerImpl) HandleExtractText(c echo.Context) error {
	in, err := h.savePDFUpload(c)
	if err != nil {
		return err
	}

	op := h.ops.Begin(models.OpExtractText, []string{in.ID})

	text, pageCount, err := pdf.ExtractText(in.Path)
	if err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to extract text", err)
	}

	outID, outPath, aerr := h.store.Allocate(models.CategoryOutputs, "text.txt")
	if aerr != nil {
		h.ops.Fail(op.ID, aerr.Error())
		return NewInternalError("failed to allocate output", aerr)
	}
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewInternalError("failed to write text output", err)
	}

	art, ferr := h.finish(op.ID, outID, outPath, "text.txt")
	if ferr != nil {
		return ferr
	}

	inline := text
	if runes := []rune(inline); len(runes) > inlineTextLimit {
		inline = string(runes[:inlineTextLimit])
	}
	return respond(c, http.StatusOK, "Text extracted successfully", map[string]any{
		"file_id":          art.ID,
		"text":             inline,
		"full_text_length": len([]rune(text)),
		"pages":            pageCount,
		"download_url":     art.DownloadURL(),
	})
}

// HandleExtractImages dumps embedded raster images into a bundle
func (h *PDFHandlerImpl) HandleExtractImages(c echo.Context) error {
	in, err := h.savePDFUpload(c)
	if err != nil {
		return err
	}

	op := h.ops.Begin(models.OpExtractImage, []string{in.ID})

	outID, outDir, aerr := h.store.AllocateDir(models.CategoryOutputs, "images")
	if aerr != nil {
		h.ops.Fail(op.ID, aerr.Error())
		return NewInternalError("failed to allocate output", aerr)
	}
	count, err := pdf.ExtractImages(in.Path, outDir)
	if err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to extract images", err)
	}
	if count == 0 {
		h.ops.Fail(op.ID, "no images found")
		return NewOperationError("no images found in document", nil)
	}

	art, ferr := h.finish(op.ID, outID, outDir, "images")
	if ferr != nil {
		return ferr
	}
	return respond(c, http.StatusOK, "Images extracted successfully", map[string]any{
		"file_id":      art.ID,
		"count":        count,
		"download_url": art.DownloadURL(),
	})
}

// HandleRemovePages deletes the selected pages
func (h *PDFHandlerImpl) HandleRemovePages(c echo.Context) error {
	in, err := h.savePDFUpload(c)
	if err != nil {
		return err
	}

	spec := c.FormValue("pages")
	if spec == "" {
		return NewBadRequestError("no pages specified for removal", nil)
	}
	count, err := pdf.PageCount(in.Path)
	if err != nil {
		return NewOperationError("failed to read PDF", err)
	}
	pages, err := pdf.ParsePageRange(spec, count)
	if err != nil {
		return NewBadRequestError("invalid page range", err)
	}

	op := h.ops.Begin(models.OpRemovePages, []string{in.ID})

	outID, outPath, aerr := h.store.Allocate(models.CategoryOutputs, "modified.pdf")
	if aerr != nil {
		h.ops.Fail(op.ID, aerr.Error())
		return NewInternalError("failed to allocate output", aerr)
	}
	if err := pdf.RemovePages(in.Path, outPath, pages); err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to remove pages", err)
	}

	art, ferr := h.finish(op.ID, outID, outPath, "modified.pdf")
	if ferr != nil {
		return ferr
	}
	return respond(c, http.StatusOK, "Pages removed successfully", map[string]any{
		"file_id":      art.ID,
		"download_url": art.DownloadURL(),
	})
}

// HandleRearrange writes pages back in an explicit order
func (h *PDFHandlerImpl) HandleRearrange(c echo.Context) error {
	in, err := h.savePDFUpload(c)
	if err != nil {
		return err
	}

	spec := c.FormValue("order")
	if spec == "" {
		return NewBadRequestError("no page order specified", nil)
	}
	count, err := pdf.PageCount(in.Path)
	if err != nil {
		return NewOperationError("failed to read PDF", err)
	}
	order, err := pdf.ParsePageOrder(spec, count)
	if err != nil {
		return NewBadRequestError("invalid page order", err)
	}

	op := h.ops.Begin(models.OpRearrange, []string{in.ID})

	outID, outPath, aerr := h.store.Allocate(models.CategoryOutputs, "rearranged.pdf")
	if aerr != nil {
		h.ops.Fail(op.ID, aerr.Error())
		return NewInternalError("failed to allocate output", aerr)
	}
	if err := pdf.Rearrange(in.Path, outPath, order); err != nil {
		h.ops.Fail(op.ID, err.Error())
		return NewOperationError("failed to rearrange pages", err)
	}

	art, ferr := h.finish(op.ID, outID, outPath, "rearranged.pdf")
	if ferr != nil {
		return ferr
	}
	return respond(c, http.StatusOK, "Pages rearranged successfully", map[string]any{
		"file_id":      art.ID,
		"download_url": art.DownloadURL(),
	})
}

// HandleProperties reports metadata for a stored artifact by id
func (h *PDFHandlerImpl) HandleProperties(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	art, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	if art.IsDir {
		return NewBadRequestError("artifact is not a PDF document", nil)
	}

	props, err := pdf.Info(art.Path)
	if err != nil {
		return NewOperationError("failed to read PDF properties", err)
	}

	return respond(c, http.StatusOK, "PDF properties retrieved", props)
}

// optionalPageRange parses the "pages" form value if present. Empty means
// the whole document.
func (h *PDFHandlerImpl) optionalPageRange(c echo.Context, path string) ([]int, error) {
	spec := c.FormValue("pages")
	if spec == "" {
		return nil, nil
	}
	count, err := pdf.PageCount(path)
	if err != nil {
		return nil, NewOperationError("failed to read PDF", err)
	}
	pages, err := pdf.ParsePageRange(spec, count)
	if err != nil {
		return nil, NewBadRequestError("invalid page range", err)
	}
	return pages, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
