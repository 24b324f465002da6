package storage

import "context"

// UploadInput représente une opération d'upload simple.
type UploadInput struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// UploadResult décrit l'artefact persisté.
type UploadResult struct {
	URL  string
	ETag string
}

// Uploader définit le comportement de base pour stocker des blobs.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}
