package storage

import (
	"context"
	"errors"
)

// NoopUploader renvoie une erreur signalant qu'aucun backend n'est configuré.
type NoopUploader struct{}

// Upload retourne toujours une erreur: la ressource n'est pas disponible.
func (NoopUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	return nil, errors.New("storage: uploader non configuré")
}
