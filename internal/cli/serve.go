package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacelens/spacelens/pkg/cache"
	"github.com/spacelens/spacelens/pkg/config"
	"github.com/spacelens/spacelens/pkg/pipeline"
	"github.com/spacelens/spacelens/pkg/snapshot"
	"github.com/spacelens/spacelens/pkg/web"
)

// serveCommand creates the serve command: run the HTTP rendering server.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve treemap renders over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

// runServer wires the configured backends and serves until ctx is done.
func (c *CLI) runServer(ctx context.Context, cfg config.Config) error {
	store, err := c.serverCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshots, closeSnapshots, err := c.serverSnapshots(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSnapshots()

	runner := pipeline.NewRunner(store, nil, c.Logger)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           web.NewServer(runner, snapshots, c.Logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// serverCache opens the cache backend named in the config. Redis failures
// degrade to the file cache so the server still comes up.
func (c *CLI) serverCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		store, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err == nil {
			c.Logger.Info("using redis cache", "url", cfg.Cache.RedisURL)
			return store, nil
		}
		c.Logger.Warn("redis unavailable, falling back to file cache", "err", err)
		fallthrough
	default:
		return newCache(cfg, false)
	}
}

// serverSnapshots opens the snapshot backend named in the config.
func (c *CLI) serverSnapshots(ctx context.Context, cfg config.Config) (snapshot.Store, func(), error) {
	if cfg.Server.SnapshotBackend == "mongo" {
		store, err := snapshot.NewMongoStore(ctx, cfg.Server.MongoURI, cfg.Server.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Info("using mongodb snapshots", "database", cfg.Server.MongoDatabase)
		return store, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = store.Close(closeCtx)
		}, nil
	}

	store, err := newSnapshotStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}
