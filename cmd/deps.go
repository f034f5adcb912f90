package cmd

import (
	"context"

	"github.com/parleychat/parley/internal/auth"
	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/realtime"
)

// deps holds what every command builds from the environment and the
// preferences file.
type deps struct {
	env  config.Env
	cfg  *config.Config
	auth *auth.Client
}

func loadDeps() (*deps, error) {
	env, err := config.LoadEnv(envFiles...)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	sessionPath, err := config.SessionPath()
	if err != nil {
		return nil, err
	}

	return &deps{
		env: env,
		cfg: cfg,
		auth: auth.NewClient(auth.Options{
			URL:         env.SupabaseURL,
			AnonKey:     env.SupabaseAnonKey,
			StoragePath: sessionPath,
		}),
	}, nil
}

func (d *deps) newManager() *realtime.Manager {
	return realtime.NewManager(realtime.Options{
		URL:    d.env.WSBaseURL,
		Policy: realtime.PolicyFor(d.env.Reconnect),
	})
}

// startAuthWorkers keeps the session fresh and in sync with other parley
// processes until ctx is cancelled.
func (d *deps) startAuthWorkers(ctx context.Context) {
	if !d.auth.Configured() {
		return
	}
	go d.auth.AutoRefresh(ctx)
	go func() {
		if err := d.auth.WatchStorage(ctx); err != nil {
			logger.WithComponent("cmd").Warn("session file watch stopped", "error", err)
		}
	}()
}
