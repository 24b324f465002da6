package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tawdev/mahtaaj/internal/auth"
	"github.com/tawdev/mahtaaj/internal/catalog"
	"github.com/tawdev/mahtaaj/internal/commerce"
	"github.com/tawdev/mahtaaj/internal/config"
	"github.com/tawdev/mahtaaj/internal/contact"
	"github.com/tawdev/mahtaaj/internal/db"
	apihttp "github.com/tawdev/mahtaaj/internal/http"
	"github.com/tawdev/mahtaaj/internal/notify"
	"github.com/tawdev/mahtaaj/internal/rating"
	"github.com/tawdev/mahtaaj/internal/repo"
	"github.com/tawdev/mahtaaj/internal/reservation"
	"github.com/tawdev/mahtaaj/internal/service"
	"github.com/tawdev/mahtaaj/internal/staff"
	"github.com/tawdev/mahtaaj/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration invalide")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connexion Postgres impossible")
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("REDIS_URL invalide")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("connexion Redis impossible")
	}

	queries := repo.New(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(queries, redisClient, jwtManager, cfg.JWTRefreshTTL)

	var uploader storage.Uploader
	switch cfg.Storage.Provider {
	case "s3":
		uploader, err = storage.NewS3Uploader(storage.S3Config{
			Endpoint:     cfg.Storage.S3Endpoint,
			Region:       cfg.Storage.S3Region,
			Bucket:       cfg.Storage.S3Bucket,
			AccessKey:    cfg.Storage.S3AccessKey,
			SecretKey:    cfg.Storage.S3SecretKey,
			PublicDomain: cfg.Storage.S3PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("configuration S3 invalide")
		}
	default:
		log.Warn().Msg("stockage noop: les uploads ne seront pas persistés")
		uploader = storage.NoopUploader{}
	}
	resolver := storage.NewResolver(cfg.Storage.S3PublicURL, "")

	reservationService := reservation.NewService(reservation.NewRepository(pool))
	contactService := contact.NewService(contact.NewRepository(pool))
	if notifier := notify.NewWebhookNotifier(cfg.NotifyWebhook); notifier != nil {
		reservationService.WithNotifier(notifier)
		contactService.WithNotifier(notifier)
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Config:      cfg,
		Pool:        pool,
		Redis:       redisClient,
		Auth:        authService,
		Catalog:     catalog.NewService(catalog.NewRepository(pool)),
		Reservation: reservationService,
		Rating:      rating.NewService(rating.NewRepository(pool)),
		Staff:       staff.NewService(staff.NewRepository(pool)),
		Commerce:    commerce.NewService(commerce.NewRepository(pool)),
		Contact:     contactService,
		Uploader:    uploader,
		Resolver:    resolver,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("API démarrée")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("serveur HTTP arrêté en erreur")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("arrêt demandé, fermeture en cours")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("arrêt forcé du serveur")
	}
}
