package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tawdev/mahtaaj/internal/auth"
	"github.com/tawdev/mahtaaj/internal/config"
	"github.com/tawdev/mahtaaj/internal/db"
	"github.com/tawdev/mahtaaj/internal/service"
)

// seedadmin crée ou réactive un compte du backoffice. Pensé pour le
// provisionnement initial et les dépannages, pas pour un usage courant.
func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		nom      = flag.String("nom", "", "nom complet de l'administrateur")
		email    = flag.String("email", "", "adresse email (identifiant de connexion)")
		role     = flag.String("role", service.RoleAdminPrincipal, "rôle admin (ADMIN_PRINCIPAL, ADMIN_MENAGE, ...)")
		password = flag.String("password", "", "mot de passe initial")
	)
	flag.Parse()

	if *nom == "" || *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	if !service.IsKnownRole(*role) {
		log.Fatal().Str("role", *role).Msg("rôle inconnu")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration invalide")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connexion Postgres impossible")
	}
	defer pool.Close()

	hash, err := auth.Hash(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("hachage du mot de passe impossible")
	}

	// Upsert sur l'email: un compte existant est remis en service
	// avec le nouveau rôle et le nouveau mot de passe.
	var id string
	err = pool.QueryRow(ctx, `
		INSERT INTO admins (nom, email, mot_de_passe, role, actif)
		VALUES ($1, $2, $3, $4, true)
		ON CONFLICT (email) DO UPDATE
			SET nom = EXCLUDED.nom,
			    mot_de_passe = EXCLUDED.mot_de_passe,
			    role = EXCLUDED.role,
			    actif = true
		RETURNING id`,
		strings.TrimSpace(*nom), strings.ToLower(strings.TrimSpace(*email)), hash,
		strings.ToUpper(strings.TrimSpace(*role)),
	).Scan(&id)
	if err != nil {
		log.Fatal().Err(err).Msg("écriture du compte impossible")
	}

	fmt.Printf("compte %s prêt (id %s, rôle %s)\n", *email, id, strings.ToUpper(*role))
}
