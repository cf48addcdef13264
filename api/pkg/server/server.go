package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/lookouthq/lookout/api/pkg/config"
	"github.com/lookouthq/lookout/api/pkg/cursor"
	"github.com/lookouthq/lookout/api/pkg/identity"
	"github.com/lookouthq/lookout/api/pkg/registry"
	"github.com/lookouthq/lookout/api/pkg/scope"
	"github.com/lookouthq/lookout/api/pkg/search"
	"github.com/lookouthq/lookout/api/pkg/store"
	"github.com/lookouthq/lookout/api/pkg/system"
)

type LookoutAPIServer struct {
	Cfg      *config.ServerConfig
	Store    store.Store
	Registry *registry.Registry
	Search   *search.Service

	authMiddleware *authMiddleware
}

func NewServer(
	cfg *config.ServerConfig,
	s store.Store,
	identityClient identity.Client,
) (*LookoutAPIServer, error) {
	if cfg.Auth.TokenSecret == "" {
		return nil, fmt.Errorf("auth token secret is required")
	}

	reg, err := registry.Load(cfg.Search.ConfigFile)
	if err != nil {
		return nil, err
	}

	resolver, err := scope.NewResolver(identityClient, s, scope.ResolverOptions{
		RoleTTL:      cfg.Search.RoleCacheTTL,
		WorkspaceTTL: cfg.Search.WorkspaceCacheTTL,
		ProjectTTL:   cfg.Search.ProjectCacheTTL,
	})
	if err != nil {
		return nil, err
	}

	cursors := cursor.NewCodec(cfg.Auth.TokenSecret, cfg.Auth.CursorTTL)

	searchService := search.NewService(reg, resolver, s, cursors, search.ServiceOptions{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	})

	return &LookoutAPIServer{
		Cfg:            cfg,
		Store:          s,
		Registry:       reg,
		Search:         searchService,
		authMiddleware: newAuthMiddleware(cfg.Auth.TokenSecret),
	}, nil
}

func (apiServer *LookoutAPIServer) ListenAndServe(ctx context.Context) error {
	router := apiServer.router()

	srv := &http.Server{
		Addr:              net.JoinHostPort(apiServer.Cfg.WebServer.Host, fmt.Sprintf("%d", apiServer.Cfg.WebServer.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("starting api server")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (apiServer *LookoutAPIServer) router() *mux.Router {
	router := mux.NewRouter()
	router.Use(requestID)

	insecureRouter := router.PathPrefix(system.APISubPath).Subrouter()
	insecureRouter.HandleFunc("/healthz", system.Wrapper(apiServer.healthz)).Methods(http.MethodGet)

	authRouter := router.PathPrefix(system.APISubPath).Subrouter()
	authRouter.Use(apiServer.authMiddleware.verifyCaller)
	authRouter.HandleFunc("/resource/search", system.Wrapper(apiServer.resourceSearch)).Methods(http.MethodPost)
	authRouter.HandleFunc("/resource/types", system.Wrapper(apiServer.listResourceTypes)).Methods(http.MethodGet)

	return router
}

type healthzResponse struct {
	Status string `json:"status"`
}

func (apiServer *LookoutAPIServer) healthz(_ http.ResponseWriter, _ *http.Request) (*healthzResponse, *system.HTTPError) {
	return &healthzResponse{Status: "ok"}, nil
}
