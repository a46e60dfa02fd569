// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// FilesHandler handles upload and file management operations
type FilesHandler interface {
	HandleUpload(c echo.Context) error
	HandleRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleStorageStats(c echo.Context) error
	HandleCleanup(c echo.Context) error
}

// PDFHandler handles PDF transformation operations
type PDFHandler interface {
	HandleMerge(c echo.Context) error
	HandleSplit(c echo.Context) error
	HandleRotate(c echo.Context) error
	HandleCompress(c echo.Context) error
	HandleWatermark(c echo.Context) error
	HandlePageNumbers(c echo.Context) error
	HandleExtractText(c echo.Context) error
	HandleExtractImages(c echo.Context) error
	HandleRemovePages(c echo.Context) error
	HandleRearrange(c echo.Context) error
	HandleProperties(c echo.Context) error
}

// ConvertHandler handles format conversion operations
type ConvertHandler interface {
	HandleImageToPDF(c echo.Context) error
}

// SecurityHandler handles password protection operations
type SecurityHandler interface {
	HandleProtect(c echo.Context) error
	HandleUnlock(c echo.Context) error
}

// DownloadHandler serves stored artifacts
type DownloadHandler interface {
	HandleDownload(c echo.Context) error
	HandleDownloadBundle(c echo.Context) error
}

// OperationsHandler exposes the operation history
type OperationsHandler interface {
	HandleRecentOperations(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
	HandleStatus(c echo.Context) error
}
