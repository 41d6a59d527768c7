package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/auth"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/config"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/database"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/storage"
)

type Api struct {
	Config config.Config
	Store  *database.Store
	Tokens *auth.TokenManager
	Files  storage.FileStorage
	Router *chi.Mux
}

func NewApi(cfg config.Config, store *database.Store, tokens *auth.TokenManager, files storage.FileStorage) *Api {
	api := &Api{
		Config: cfg,
		Store:  store,
		Tokens: tokens,
		Files:  files,
		Router: chi.NewRouter(),
	}
	api.setupRoutes()
	return api
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Heartbeat("/heartbeat"))

	// Public routes
	r.Post("/register", api.Register)
	r.Post("/login", api.Login)

	// Everything else requires a valid, non-expired, non-revoked token
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticator(api.Tokens))

		r.Post("/logout", api.Logout)
		r.Get("/profile", api.Profile)

		r.Get("/posts", api.ListFeed)
		r.Get("/posts/mine", api.ListMyPosts)
		r.Post("/posts", api.CreatePost)
		r.Put("/posts/{id}", api.UpdatePost)
		r.Delete("/posts/{id}", api.DeletePost)

		r.Get("/posts/{id}/comments", api.ListComments)
		r.Post("/posts/{id}/comments", api.CreateComment)
		r.Delete("/comments/{id}", api.DeleteComment)

		r.Get("/posts/{id}/reactions", api.ListReactions)
		r.Post("/posts/{id}/reactions", api.CreateReaction)
		r.Delete("/reactions/{id}", api.DeleteReaction)
	})
}

func (api *Api) Serve() {
	// Prune revocation entries past their token's natural expiry. Validation
	// checks expiry before the revocation lookup, so this only bounds the
	// table's growth.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			if err := api.Store.CleanupExpiredRevocations(); err != nil {
				log.Printf("Error cleaning up expired token revocations: %v", err)
			}
			<-ticker.C
		}
	}()

	log.Printf("Starting API server on 0.0.0.0:%d", api.Config.APIPort)
	log.Fatal(http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort), api.Router))
}
