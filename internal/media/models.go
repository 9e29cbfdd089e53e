package media

import (
	"io"
	"time"
)

// ObjectMetadata is the sidecar payload stored next to each physical file.
type ObjectMetadata struct {
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimetype"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Hash         string    `json:"hash"`
}

// Upload is one item of an ingestion batch.
type Upload struct {
	OriginalName string
	MimeType     string
	Size         int64
	// Open yields the upload bytes. A nil Open means the bytes were never staged.
	Open func() (io.ReadCloser, error)
}

// IngestResult reports the outcome for one uploaded item.
type IngestResult struct {
	URL          string `json:"url,omitempty"`
	Dedup        bool   `json:"dedup"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path,omitempty"`
	Hash         string `json:"hash,omitempty"`
	Size         int64  `json:"size,omitempty"`
	Error        string `json:"error,omitempty"`

	err error
}

// Err returns the failure behind Error, if any.
func (r IngestResult) Err() error { return r.err }

// CatalogEntry joins a physical file with its sidecar, if one could be read.
type CatalogEntry struct {
	URL          string     `json:"url"`
	Path         string     `json:"path"`
	OriginalName string     `json:"originalName,omitempty"`
	Size         *int64     `json:"size,omitempty"`
	MimeType     string     `json:"mimetype,omitempty"`
	UploadedAt   *time.Time `json:"uploadedAt,omitempty"`
	Hash         string     `json:"hash,omitempty"`
}

// ListParams selects a page of the catalog.
type ListParams struct {
	Page  int
	Limit int
	Query string
}

// ListPage is one page of catalog entries.
type ListPage struct {
	Data  []CatalogEntry `json:"data"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Query string         `json:"q,omitempty"`
}

// Delete statuses.
const (
	StatusDeleted  = "deleted"
	StatusNotFound = "not found"
	StatusError    = "error"
)

// DeleteResult reports the outcome for one delete reference.
type DeleteResult struct {
	Input   string `json:"input"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Path    string `json:"-"`
}

// VerifyIssue is one integrity problem found by Verify.
type VerifyIssue struct {
	Path    string `json:"path"`
	Problem string `json:"problem"`
	Actual  string `json:"actual,omitempty"`
}

// VerifyReport summarizes an integrity pass over the storage root.
type VerifyReport struct {
	Checked int           `json:"checked"`
	Issues  []VerifyIssue `json:"issues"`
}
