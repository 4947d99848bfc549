// Package cli is the jobwatch command tree.
package cli

import (
	"context"
	"fmt"

	"jobwatch/internal/api/jobs"
	"jobwatch/internal/config"
	"jobwatch/internal/storage/postgres"
	"jobwatch/internal/storage/redis"
	"jobwatch/internal/suggest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App carries what every command needs. Storage is opened per command,
// only when the command uses it.
type App struct {
	Config *config.Config
	Client *jobs.Client
	Logger *zap.Logger
}

func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jobwatch",
		Short:         "Query, suggest and scrape job listings from the jobs backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(JobsCmd(app))
	rootCmd.AddCommand(SearchCmd(app))
	rootCmd.AddCommand(SuggestCmd(app))
	rootCmd.AddCommand(AlertsCmd(app))
	rootCmd.AddCommand(ScrapeCmd(app))
	rootCmd.AddCommand(ProfileCmd(app))
	rootCmd.AddCommand(WatchCmd(app))
	rootCmd.AddCommand(InteractiveCmd(app))

	return rootCmd
}

func Execute(ctx context.Context, app *App, args []string) error {
	rootCmd := NewRootCmd(app)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) openStore(ctx context.Context) (*postgres.Store, error) {
	if a.Config.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is not set")
	}

	store, err := postgres.New(a.Config.PostgresDSN, a.Logger)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

// openCache returns nil when Redis is not configured or unreachable; the
// cache is an optimisation only.
func (a *App) openCache() *redis.Cache {
	if a.Config.RedisAddr == "" {
		return nil
	}

	cache, err := redis.New(a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisDB, a.Logger)
	if err != nil {
		a.Logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		return nil
	}

	return cache
}

func suggestCache(cache *redis.Cache) suggest.Cache {
	if cache == nil {
		return nil
	}
	return cache
}
