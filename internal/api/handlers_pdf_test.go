// handlers_pdf_test.go - Validation tests for PDF operation handlers
package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

// pdfUpload is a stand-in upload; handlers validate request parameters
// before the document is ever parsed.
var pdfUpload = map[string][]byte{"doc.pdf": []byte("%PDF-1.4 stub")}

func TestPDFHandler_Validation(t *testing.T) {
	tests := []struct {
		name    string
		handler func(h PDFHandler) echo.HandlerFunc
		field   string
		files   map[string][]byte
		values  map[string]string
		errCode string
	}{
		{
			name:    "merge requires two files",
			handler: func(h PDFHandler) echo.HandlerFunc { return h.HandleMerge },
			field:   "files",
			files:   map[string][]byte{"one.pdf": []byte("%PDF-1.4")},
			errCode: "BAD_REQUEST",
		},
		{
			name:    "merge rejects non-pdf",
			handler: func(h PDFHandler) echo.HandlerFunc { return h.HandleMerge },
			field:   "files",
			files: map[string][]byte{
				"one.pdf": []byte("%PDF-1.4"),
				"two.png": []byte("pngbytes"),
			},
			errCode: "UNSUPPORTED_FILE_TYPE",
		},
		{
			name:    "split requires a file",
			handler: func(h PDFHandler) echo.HandlerFunc { return h.HandleSplit },
			field:   "file",
			files:   nil,
			errCode: "BAD_REQUEST",
		},
		{
			name:    "rotate rejects odd angle",
			handler: func(h PDFHandler) echo.HandlerFunc { return h.HandleRotate },
			field:   "file",
			files:   pdfUpload,
			values:  map[string]string{"angle": "45"},
			errCode: "VALIDATION_ERROR",
		},
		{
			name:    "rotate rejects non-numeric angle",
			handler: func(h PDFHandler) echo.HandlerFunc { return h.HandleRotate },
			field:   "file",
			files:   pdfUpload,
			values:  map[string]string{"angle": "ninety"},
			errCode: "VALIDATION_ERROR",
		},
		{
			name:    "compress rejects unknown quality",
			handler: func(h PDFHandler) echo.HandlerFunc { return h.HandleCompress },
			field:   "file",
			files:   pdfUpload,
			values:  map[string]string{"quality": "ultra"},
			errCode: "VALIDATION_ERROR",
		},
		{
			name:    "watermark rejects bad opacity",
			handler: func(h PDFHandler) echo.HandlerFunc { return h.HandleWatermark },
			field:   "file",
			files:   pdfUpload,
			values:  map[string]string{"opacity": "1.5"},
			errCode: "VALIDATION_ERROR",
		},
		{
			name:    "page numbers reject unknown position",
			handler: func(h PDFHandler) echo.HandlerFunc { return h.HandlePageNumbers },
			field:   "file",
			files:   pdfUpload,
			values:  map[string]string{"position": "middle"},
			errCode: "VALIDATION_ERROR",
		},
		{
			name:    "remove pages requires a selection",
			handler: func(h PDFHandler) echo.HandlerFunc { return h.HandleRemovePages },
			field:   "file",
			files:   pdfUpload,
			errCode: "BAD_REQUEST",
		},
		{
			name:    "rearrange requires an order",
			handler: func(h PDFHandler) echo.HandlerFunc { return h.HandleRearrange },
			field:   "file",
			files:   pdfUpload,
			errCode: "BAD_REQUEST",
		},
		{
			name:    "non-pdf upload rejected",
			handler: func(h PDFHandler) echo.HandlerFunc { return h.HandleSplit },
			field:   "file",
			files:   map[string][]byte{"pic.png": []byte("pngbytes")},
			errCode: "UNSUPPORTED_FILE_TYPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := testDeps(t)
			handler := NewPDFHandler(deps.Store, deps.Ops, deps.Config, deps.Logger)

			files := tt.files
			if files == nil {
				files = map[string][]byte{}
			}
			body, contentType := multipartBody(t, tt.field, files, tt.values)
			c, _ := newFormContext(t, "/api/pdf/op", body, contentType)

			err := tt.handler(handler)(c)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			apiErr, ok := err.(*APIError)
			if !ok {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			if apiErr.Code != tt.errCode {
				t.Errorf("Code = %s, want %s", apiErr.Code, tt.errCode)
			}
		})
	}
}

func TestPDFHandler_OperationFailureOnCorruptInput(t *testing.T) {
	// A stub upload passes request validation but cannot be parsed;
	// the operation must fail with 422 and be recorded as an error.
	deps := testDeps(t)
	handler := NewPDFHandler(deps.Store, deps.Ops, deps.Config, deps.Logger)

	body, contentType := multipartBody(t, "file", pdfUpload, nil)
	c, _ := newFormContext(t, "/api/pdf/split", body, contentType)

	err := handler.HandleSplit(c)
	if err == nil {
		t.Fatal("expected error for corrupt input")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", apiErr.Status)
	}

	recent := deps.Ops.Recent(1)
	if len(recent) != 1 {
		t.Fatalf("expected 1 recorded operation, got %d", len(recent))
	}
	if recent[0].Error == "" {
		t.Error("expected operation record to carry the failure reason")
	}
}

func TestPDFHandler_HandleProperties(t *testing.T) {
	deps := testDeps(t)
	handler := NewPDFHandler(deps.Store, deps.Ops, deps.Config, deps.Logger)

	e := echo.New()

	t.Run("unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("nope")

		err := handler.HandleProperties(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Status != http.StatusNotFound {
			t.Errorf("expected 404 APIError, got %v", err)
		}
	})

	t.Run("corrupt document", func(t *testing.T) {
		art, err := deps.Store.SaveUpload("bad.pdf", bytes.NewReader([]byte("not a pdf")))
		if err != nil {
			t.Fatalf("SaveUpload: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(art.ID)

		err = handler.HandleProperties(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Status != http.StatusUnprocessableEntity {
			t.Errorf("expected 422 APIError, got %v", err)
		}
	})
}
