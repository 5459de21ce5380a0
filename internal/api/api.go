package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MediSynth-io/updateservice/internal/auth"
	"github.com/MediSynth-io/updateservice/internal/config"
	"github.com/MediSynth-io/updateservice/internal/packages"
	"github.com/MediSynth-io/updateservice/internal/pagination"
	"github.com/MediSynth-io/updateservice/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Api struct {
	Config config.Config
	Router *chi.Mux

	store     *store.Store
	authority *auth.Authority
	registry  *packages.Registry
	artifacts *packages.ArtifactStore
	pages     pagination.Gate
	log       *zap.SugaredLogger
}

func NewApi(cfg config.Config, st *store.Store, lg *zap.SugaredLogger) (*Api, error) {
	if cfg.APIPort == 0 {
		return nil, errors.New("Must have at least a port to start API")
	}
	if st == nil {
		return nil, errors.New("a store is required")
	}

	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.Token.TTL)
	api := &Api{
		Config:    cfg,
		Router:    chi.NewRouter(),
		store:     st,
		authority: auth.NewAuthority(tokens, st, lg),
		registry:  packages.NewRegistry(st),
		artifacts: packages.NewArtifactStore(cfg.Storage.Root, st),
		pages: pagination.Gate{
			Max:         cfg.Pagination.MaxInt,
			DefaultSize: cfg.Pagination.DefaultSize,
		},
		log: lg,
	}

	api.setupRoutes()
	return api, nil
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   api.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(api.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/heartbeat"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", api.Health)
	r.Get("/temp/hello", api.Hello)

	r.Route("/internal/v1", func(r chi.Router) {
		r.Post("/teams", api.CreateTeam)
		r.Get("/teams", api.ListTeams)
		r.Put("/teams/{team_id}", api.UpdateTeam)

		r.Post("/users", api.CreateUser)
		r.Get("/users", api.ListUsers)
		r.Post("/users/{user_id}/token", api.CreateToken)
		r.Delete("/users/{user_id}/token/{token}", api.DeleteToken)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.AuthMiddleware(api.authority, api.log))

		r.Post("/teams/{team_id}/applications", api.CreateApplication)
		r.Get("/teams/{team_id}/applications", api.ListApplications)
		r.Get("/teams/{team_id}/applications/{application_id}", api.GetApplication)
		r.Patch("/team/{team_id}/applications/{application_id}", api.PatchApplication)

		r.Post("/groups", api.CreateGroup)
		r.Delete("/groups/{group_id}", api.DeleteGroup)
		r.Post("/applications/{application_id}/groups/{group_id}", api.AssignGroup)
		r.Delete("/applications/{application_id}/groups/{group_id}", api.UnassignGroup)

		r.Route("/applications/{application_id}/packages", func(r chi.Router) {
			r.Post("/", api.CreatePackage)
			r.Get("/", api.ListPackages)
			r.Get("/{package_id}", api.GetPackage)
			r.Delete("/{package_id}", api.DeletePackage)
			r.Post("/{package_id}/file", api.UploadFile)
			r.Get("/{package_id}/file", api.DownloadFile)
		})
	})
}

// Serve listens until ctx is cancelled, then drains in-flight requests.
func (api *Api) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", api.Config.Host, api.Config.APIPort),
		Handler:           api.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		api.log.Infow("starting API server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	api.log.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
