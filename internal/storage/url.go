package storage

import (
	"strings"
)

// Resolver dérive l'URL publique d'une image à partir de la valeur stockée.
// Les lignes historiques mélangent trois formes: une URL déjà absolue, un
// chemin legacy du vieux serveur (/storage/... ou /api/uploads/...), ou un
// simple nom de fichier. Un même nom de fichier résout toujours vers la
// même URL dérivée.
type Resolver struct {
	publicBase string
	fallback   string
}

// NewResolver crée un résolveur pour le domaine public du bucket.
func NewResolver(publicBase, fallback string) *Resolver {
	return &Resolver{
		publicBase: strings.TrimRight(strings.TrimSpace(publicBase), "/"),
		fallback:   fallback,
	}
}

var legacyPrefixes = []string{"/storage/", "/api/uploads/", "/uploads/"}

// Resolve classe la valeur stockée et retourne une URL affichable.
func (r *Resolver) Resolve(stored string) string {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return r.fallback
	}

	if strings.HasPrefix(stored, "http://") || strings.HasPrefix(stored, "https://") {
		return stored
	}

	key := stored
	for _, prefix := range legacyPrefixes {
		if strings.HasPrefix(key, prefix) {
			key = strings.TrimPrefix(key, prefix)
			break
		}
	}
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return r.fallback
	}

	if r.publicBase == "" {
		return r.fallback
	}
	return r.publicBase + "/" + key
}
