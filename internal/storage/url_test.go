package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := NewResolver("https://cdn.mahtaaj.sn/public", "https://cdn.mahtaaj.sn/public/defaut.png")

	cases := []struct {
		name   string
		stored string
		want   string
	}{
		{"URL http absolue inchangée", "http://autre.site/img.png", "http://autre.site/img.png"},
		{"URL https absolue inchangée", "https://autre.site/img.png", "https://autre.site/img.png"},
		{"chemin legacy /storage/", "/storage/services/menage.jpg", "https://cdn.mahtaaj.sn/public/services/menage.jpg"},
		{"chemin legacy /api/uploads/", "/api/uploads/equipe/awa.jpg", "https://cdn.mahtaaj.sn/public/equipe/awa.jpg"},
		{"chemin legacy /uploads/", "/uploads/jardin.png", "https://cdn.mahtaaj.sn/public/jardin.png"},
		{"nom de fichier nu", "securite.webp", "https://cdn.mahtaaj.sn/public/securite.webp"},
		{"valeur vide: image par défaut", "", "https://cdn.mahtaaj.sn/public/defaut.png"},
		{"slash seul: image par défaut", "/storage/", "https://cdn.mahtaaj.sn/public/defaut.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Resolve(tc.stored))
		})
	}
}

// Un même nom stocké résout toujours vers la même URL, quelle que soit
// la forme legacy d'origine.
func TestResolveIsStableAcrossLegacyForms(t *testing.T) {
	r := NewResolver("https://cdn.mahtaaj.sn/public", "")

	want := "https://cdn.mahtaaj.sn/public/services/menage.jpg"
	assert.Equal(t, want, r.Resolve("services/menage.jpg"))
	assert.Equal(t, want, r.Resolve("/storage/services/menage.jpg"))
	assert.Equal(t, want, r.Resolve("/uploads/services/menage.jpg"))
}

func TestResolveWithoutBase(t *testing.T) {
	r := NewResolver("", "/img/defaut.png")
	assert.Equal(t, "/img/defaut.png", r.Resolve("photo.jpg"))
	assert.Equal(t, "https://site/img.png", r.Resolve("https://site/img.png"))
}
