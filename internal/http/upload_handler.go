package http

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tawdev/mahtaaj/internal/storage"
)

const maxUploadBytes = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadHandler pousse les images (catégories, services, employés)
// vers le bucket public et renvoie l'URL résolue.
type UploadHandler struct {
	uploader storage.Uploader
	resolver *storage.Resolver
}

func NewUploadHandler(uploader storage.Uploader, resolver *storage.Resolver) *UploadHandler {
	return &UploadHandler{uploader: uploader, resolver: resolver}
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "fichier trop volumineux (5 Mo maximum)", nil)
		return
	}

	file, header, err := r.FormFile("fichier")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "champ 'fichier' manquant", nil)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "lecture du fichier impossible", nil)
		return
	}

	contentType := http.DetectContentType(body)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "format accepté: JPEG, PNG ou WebP", nil)
		return
	}

	dossier := strings.TrimSpace(r.FormValue("dossier"))
	if dossier == "" || strings.ContainsAny(dossier, "./\\") {
		dossier = "divers"
	}

	key := fmt.Sprintf("%s/%d-%s%s", dossier, time.Now().Unix(), uuid.NewString()[:8], ext)
	result, err := h.uploader.Upload(r.Context(), storage.UploadInput{
		Key:          key,
		Body:         body,
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("upload: échec")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "téléversement impossible", nil)
		return
	}

	url := result.URL
	if url == "" {
		url = h.resolver.Resolve(key)
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"cle":     key,
		"url":     url,
		"fichier": path.Base(header.Filename),
	})
}
