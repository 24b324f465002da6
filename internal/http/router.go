package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tawdev/mahtaaj/internal/catalog"
	"github.com/tawdev/mahtaaj/internal/commerce"
	"github.com/tawdev/mahtaaj/internal/config"
	"github.com/tawdev/mahtaaj/internal/contact"
	"github.com/tawdev/mahtaaj/internal/http/middleware"
	"github.com/tawdev/mahtaaj/internal/rating"
	"github.com/tawdev/mahtaaj/internal/reservation"
	"github.com/tawdev/mahtaaj/internal/service"
	"github.com/tawdev/mahtaaj/internal/staff"
	"github.com/tawdev/mahtaaj/internal/storage"
)

// RouterDeps regroupe les dépendances injectées dans le routeur.
type RouterDeps struct {
	Config      *config.Config
	Pool        *pgxpool.Pool
	Redis       *redis.Client
	Auth        *service.AuthService
	Catalog     *catalog.CatalogService
	Reservation *reservation.ReservationService
	Rating      *rating.RatingService
	Staff       *staff.StaffService
	Commerce    *commerce.CommerceService
	Contact     *contact.ContactService
	Uploader    storage.Uploader
	Resolver    *storage.Resolver
}

// NewRouter assemble l'API: surface publique, espace client
// authentifié et backoffice gardé section par section.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recover)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(deps.Config.AllowOrigins))

	publicLimiter := middleware.NewRateLimiter(
		deps.Config.RateLimitPublic.RequestsPerSecond,
		deps.Config.RateLimitPublic.Burst,
	)
	authLimiter := middleware.NewRateLimiter(
		deps.Config.RateLimitAuth.RequestsPerSecond,
		deps.Config.RateLimitAuth.Burst,
	)

	authHandler := NewAuthHandler(deps.Auth, deps.Config.JWTRefreshTTL, true)
	uploadHandler := NewUploadHandler(deps.Uploader, deps.Resolver)
	catalogHandler := catalog.NewHandler(deps.Catalog)
	reservationHandler := reservation.NewHandler(deps.Reservation)
	ratingHandler := rating.NewHandler(deps.Rating)
	staffHandler := staff.NewHandler(deps.Staff)
	commerceHandler := commerce.NewHandler(deps.Commerce)
	contactHandler := contact.NewHandler(deps.Contact)

	r.Get("/health", handleHealth)
	r.Get("/ready", handleReady(deps.Pool, deps.Redis))

	// Surface publique: consultation du catalogue, réservations
	// anonymes, commandes et prise de contact.
	r.Group(func(r chi.Router) {
		r.Use(middleware.IPRateLimit(publicLimiter))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/admin/login", authHandler.HandleAdminLogin)
			r.Post("/client/login", authHandler.HandleClientLogin)
			r.Post("/client/register", authHandler.HandleClientRegister)
			r.Post("/refresh", authHandler.HandleRefresh)
			r.Post("/logout", authHandler.HandleLogout)
		})

		catalogHandler.RegisterPublicRoutes(r)
		reservationHandler.RegisterPublicRoutes(r)
		ratingHandler.RegisterPublicRoutes(r)
		staffHandler.RegisterPublicRoutes(r)
		commerceHandler.RegisterPublicRoutes(r)
		contactHandler.RegisterPublicRoutes(r)
	})

	// Espace client authentifié.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Auth.JWT()))
		r.Use(middleware.UserRateLimit(authLimiter))

		r.Get("/me", authHandler.HandleMe)

		r.Route("/client", func(r chi.Router) {
			reservationHandler.RegisterClientRoutes(r)
			ratingHandler.RegisterClientRoutes(r)
		})
	})

	// Backoffice: chaque sous-arbre est gardé par sa section, le
	// rôle principal passe partout.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Auth.JWT()))
		r.Use(middleware.UserRateLimit(authLimiter))
		r.Use(middleware.RequireAdmin)

		r.With(middleware.RequireSection(service.SectionDashboard)).
			Get("/dashboard", handleDashboard(deps.Pool))

		// Sonde de navigation: le front interroge la section avant
		// d'afficher le sous-arbre; un refus indique où rediriger.
		r.Get("/sections/{section}", handleSectionProbe)

		r.Post("/uploads", uploadHandler.HandleUpload)

		// Le catalogue est partagé entre les lignes de service; le
		// filtrage par ligne passe par le paramètre de requête.
		r.Route("/catalogue", func(r chi.Router) {
			catalogHandler.RegisterAdminRoutes(r)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Use(middleware.RequireSection(service.SectionReservations))
			reservationHandler.RegisterAdminRoutes(r)
		})

		// Les fiches employés couvrent toutes les lignes; le contrôle
		// d'accès se fait fiche par fiche dans le handler (ligne → section).
		r.Route("/employes", func(r chi.Router) {
			staffHandler.RegisterAdminRoutes(r)
		})

		r.Route("/avis", func(r chi.Router) {
			ratingHandler.RegisterAdminRoutes(r)
		})

		r.Route("/commerce", func(r chi.Router) {
			r.Use(middleware.RequireSection(service.SectionCommerce))
			commerceHandler.RegisterAdminRoutes(r)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Use(middleware.RequireSection(service.SectionContacts))
			contactHandler.RegisterAdminRoutes(r)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady vérifie les dépendances avant de déclarer le service prêt.
func handleReady(pool *pgxpool.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "base de données indisponible", nil)
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "redis indisponible", nil)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleSectionProbe répond aux vérifications de navigation du
// backoffice: accès accordé ou refus avec la section de repli du rôle.
func handleSectionProbe(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	roles := middleware.GetRoles(r.Context())

	if !service.CanAccess(roles, section) {
		redirect := service.SectionDashboard
		if len(roles) > 0 {
			redirect = service.DefaultSection(roles[0])
		}
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "section hors du périmètre du rôle", map[string]any{
			"section":  section,
			"redirect": redirect,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"section": section, "acces": true})
}

// handleDashboard agrège les compteurs affichés sur la page d'accueil
// du backoffice.
func handleDashboard(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var stats struct {
			Services            int `json:"services"`
			ServicesEnAttente   int `json:"services_en_attente"`
			Reservations        int `json:"reservations"`
			ReservationsEnCours int `json:"reservations_en_cours"`
			Commandes           int `json:"commandes"`
			MessagesNonLus      int `json:"messages_non_lus"`
		}

		err := pool.QueryRow(r.Context(), `
			SELECT
				(SELECT count(*) FROM services),
				(SELECT count(*) FROM services WHERE statut = 'pending'),
				(SELECT count(*) FROM reservations),
				(SELECT count(*) FROM reservations WHERE statut IN ('pending', 'confirmed', 'in_progress')),
				(SELECT count(*) FROM commandes),
				(SELECT count(*) FROM messages_contact WHERE NOT lu)`,
		).Scan(&stats.Services, &stats.ServicesEnAttente, &stats.Reservations,
			&stats.ReservationsEnCours, &stats.Commandes, &stats.MessagesNonLus)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "erreur interne", nil)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"statistiques": stats})
	}
}
