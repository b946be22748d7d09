// Package client wires the moodkeeper CLI: local store, session, API
// client, sync services and the REPL.
package client

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/moodkeeper/internal/client/cli"
	"github.com/dmitrijs2005/moodkeeper/internal/client/config"
	"github.com/dmitrijs2005/moodkeeper/internal/client/remote"
	"github.com/dmitrijs2005/moodkeeper/internal/client/services"
	"github.com/dmitrijs2005/moodkeeper/internal/client/session"
	"github.com/dmitrijs2005/moodkeeper/internal/client/store"
	"github.com/dmitrijs2005/moodkeeper/internal/logging"
	"github.com/dmitrijs2005/moodkeeper/internal/netx"
)

type App struct {
	cli    *cli.App
	store  *store.Store
	prober *remote.HealthProber
	logger logging.Logger
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{
		Backend: logging.BackendSlog,
		Level:   c.LogLevel,
		Format:  logging.FormatText,
		Output:  os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, c.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	sm := session.NewManager(st.Metadata())
	if err := sm.Load(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	prober, err := remote.NewHealthProber(c.HealthAddr)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("health prober: %w", err)
	}

	api := remote.NewHTTPClient(c.ServerURL, c.RequestTimeout, sm.Token)

	moods := services.NewMoodService(st, api, logger)
	moods.SetUploader(func(ctx context.Context, url string, body []byte) error {
		return netx.UploadToPresignedURL(ctx, api.HTTP(), url, body)
	})
	auth := services.NewAuthService(api, sm, moods, logger)
	stats := services.NewStatsService(api)

	app := cli.NewApp(c, cli.Deps{
		Auth:    auth,
		Moods:   moods,
		Stats:   stats,
		Session: sm,
		Prober:  prober,
		Logger:  logger,
		In:      os.Stdin,
		Out:     os.Stdout,
	})

	return &App{cli: app, store: st, prober: prober, logger: logger}, nil
}

// Run blocks until the user leaves the REPL or ctx is cancelled, then
// releases the store and the gRPC connection.
func (a *App) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		a.cli.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Info(context.Background(), "interrupted")
	}

	if err := a.prober.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing health connection", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error(context.Background(), "closing local store", "error", err)
	}
}
