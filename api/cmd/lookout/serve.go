package lookout

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lookouthq/lookout/api/pkg/config"
	"github.com/lookouthq/lookout/api/pkg/identity"
	"github.com/lookouthq/lookout/api/pkg/server"
	"github.com/lookouthq/lookout/api/pkg/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the lookout api server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), &cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.ServerConfig) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoStore, err := store.NewMongoStore(ctx, store.StoreOptions{
		URI:         cfg.Store.URI,
		Prefix:      cfg.Store.Prefix,
		MaxPoolSize: cfg.Store.MaxPoolSize,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoStore.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close datastore client")
		}
	}()

	identityClient := identity.NewHTTPClient(identity.ClientOptions{
		BaseURL: cfg.Identity.BaseURL,
		Token:   cfg.Identity.Token,
	})

	apiServer, err := server.NewServer(cfg, mongoStore, identityClient)
	if err != nil {
		return err
	}

	return apiServer.ListenAndServe(ctx)
}
