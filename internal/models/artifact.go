package models

import "time"

// Category names the area of the session root an artifact lives in.
type Category string

const (
	CategoryUploads Category = "uploads"
	CategoryOutputs Category = "outputs"
	CategoryBundles Category = "bundles"
)

// Artifact represents one file (or result directory) under the session root.
type Artifact struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`       // original filename, or a generated output name
	StoredName string    `json:"storedName"` // basename under the category directory
	Category   Category  `json:"category"`
	Size       int64     `json:"size"`
	IsDir      bool      `json:"isDir,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`

	// Path is the absolute location on disk. Not serialized; clients refer
	// to artifacts by id or stored name only.
	Path string `json:"-"`
}

// DownloadURL returns the API path a client uses to fetch this artifact.
func (a *Artifact) DownloadURL() string {
	if a.IsDir {
		return "/api/download/bundle/" + a.ID
	}
	return "/api/download/" + a.StoredName
}
