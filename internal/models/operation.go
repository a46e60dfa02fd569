package models

import "time"

// OperationKind identifies a PDF operation exposed by the API.
type OperationKind string

const (
	OpMerge        OperationKind = "merge"
	OpSplit        OperationKind = "split"
	OpRotate       OperationKind = "rotate"
	OpCompress     OperationKind = "compress"
	OpWatermark    OperationKind = "watermark"
	OpPageNumbers  OperationKind = "page-numbers"
	OpExtractText  OperationKind = "extract-text"
	OpExtractImage OperationKind = "extract-images"
	OpRemovePages  OperationKind = "remove-pages"
	OpRearrange    OperationKind = "rearrange"
	OpImageToPDF   OperationKind = "image-to-pdf"
	OpProtect      OperationKind = "protect"
	OpUnlock       OperationKind = "unlock"
)

// OperationStatus is the lifecycle state of a recorded operation.
type OperationStatus string

const (
	OperationStatusRunning  OperationStatus = "running"
	OperationStatusComplete OperationStatus = "complete"
	OperationStatusError    OperationStatus = "error"
)

// Operation records one executed PDF operation for the recent-operations view.
type Operation struct {
	ID          string          `json:"id"`
	Kind        OperationKind   `json:"kind"`
	Status      OperationStatus `json:"status"`
	InputIDs    []string        `json:"inputIds,omitempty"`
	OutputIDs   []string        `json:"outputIds,omitempty"`
	DurationMs  int64           `json:"durationMs,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}
