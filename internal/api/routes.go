// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/pdfmaster/backend/internal/config"
	"github.com/pdfmaster/backend/internal/ops"
	"github.com/pdfmaster/backend/internal/store"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store   *store.Store
	Ops     *ops.Manager
	Config  *config.AppConfig
	Logger  *logrus.Logger
	Version string
}

// Handlers holds all handler instances
type Handlers struct {
	Health     HealthHandler
	Files      FilesHandler
	PDF        PDFHandler
	Convert    ConvertHandler
	Security   SecurityHandler
	Download   DownloadHandler
	Operations OperationsHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(deps.Version, deps.Store),
		Files:      NewFilesHandler(deps.Store, deps.Config, deps.Logger),
		PDF:        NewPDFHandler(deps.Store, deps.Ops, deps.Config, deps.Logger),
		Convert:    NewConvertHandler(deps.Store, deps.Ops, deps.Config, deps.Logger),
		Security:   NewSecurityHandler(deps.Store, deps.Ops, deps.Config, deps.Logger),
		Download:   NewDownloadHandler(deps.Store, deps.Logger),
		Operations: NewOperationsHandler(deps.Ops),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)
	e.GET("/api/status", handlers.Health.HandleStatus)

	// Upload
	e.POST("/api/upload", handlers.Files.HandleUpload)

	// PDF operation routes
	pdfGroup := e.Group("/api/pdf")
	pdfGroup.POST("/merge", handlers.PDF.HandleMerge)
	pdfGroup.POST("/split", handlers.PDF.HandleSplit)
	pdfGroup.POST("/rotate", handlers.PDF.HandleRotate)
	pdfGroup.POST("/compress", handlers.PDF.HandleCompress)
	pdfGroup.POST("/watermark", handlers.PDF.HandleWatermark)
	pdfGroup.POST("/page-numbers", handlers.PDF.HandlePageNumbers)
	pdfGroup.POST("/extract-text", handlers.PDF.HandleExtractText)
	pdfGroup.POST("/extract-images", handlers.PDF.HandleExtractImages)
	pdfGroup.POST("/remove-pages", handlers.PDF.HandleRemovePages)
	pdfGroup.POST("/rearrange", handlers.PDF.HandleRearrange)
	pdfGroup.GET("/properties/:id", handlers.PDF.HandleProperties)

	// Conversion routes
	e.POST("/api/convert/image-to-pdf", handlers.Convert.HandleImageToPDF)

	// Security routes
	securityGroup := e.Group("/api/security")
	securityGroup.POST("/protect", handlers.Security.HandleProtect)
	securityGroup.POST("/unlock", handlers.Security.HandleUnlock)

	// Download routes
	e.GET("/api/download/bundle/:id", handlers.Download.HandleDownloadBundle)
	e.GET("/api/download/:name", handlers.Download.HandleDownload)

	// File management routes
	filesGroup := e.Group("/api/files")
	filesGroup.GET("/recent", handlers.Files.HandleRecentFiles)
	filesGroup.GET("/:id", handlers.Files.HandleGetFile)
	filesGroup.DELETE("/:id", handlers.Files.HandleDeleteFile)

	// Storage and maintenance
	e.GET("/api/storage/stats", handlers.Files.HandleStorageStats)
	e.POST("/api/cleanup", handlers.Files.HandleCleanup)

	// Operation history
	e.GET("/api/operations/recent", handlers.Operations.HandleRecentOperations)
}

// SetupMiddleware configures the middleware stack and error handler
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig, logger *logrus.Logger) {
	e.HTTPErrorHandler = NewErrorHandler(logger)
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(middleware.Gzip())

	if cfg.Advanced.EnableRequestLogging {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/health"
			},
		}))
	}

	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{cfg.Server.AllowOrigins},
		}))
	}
}
