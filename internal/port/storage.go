package port

import (
	"context"
	"io"
)

// DocumentUpload describes a rendered document to archive.
type DocumentUpload struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
	// Filename is offered to browsers when the presigned URL is opened.
	Filename string
	// Metadata is stored as object user metadata (x-amz-meta-*).
	Metadata map[string]string
}

// StoredDocument identifies an archived object.
type StoredDocument struct {
	Location string
	ETag     string
}

// ObjectStorage archives invoice documents and hands out time-limited links.
type ObjectStorage interface {
	Upload(ctx context.Context, doc DocumentUpload) (*StoredDocument, error)
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
