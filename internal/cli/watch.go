package cli

import (
	"fmt"

	"jobwatch/internal/notify"
	"jobwatch/internal/results"
	"jobwatch/internal/scrape"
	"jobwatch/internal/watcher"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func WatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scrape on a schedule for a saved profile and send new jobs to Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *app.Config
			if spec, _ := cmd.Flags().GetString("cron"); spec != "" {
				cfg.WatchCron = spec
			}
			if profile, _ := cmd.Flags().GetString("profile"); profile != "" {
				cfg.WatchProfile = profile
			}

			if err := cfg.ValidateWatch(); err != nil {
				return fmt.Errorf("invalid watch config: %w", err)
			}

			ctx := cmd.Context()

			store, err := app.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var limiter watcher.Limiter
			if cache := app.openCache(); cache != nil {
				defer cache.Close()
				limiter = cache
			}

			bot, err := notify.NewBot(cfg.TelegramToken)
			if err != nil {
				return fmt.Errorf("failed to create telegram bot: %w", err)
			}
			notifier := notify.NewTelegram(bot, cfg.TelegramChatID, app.Logger)

			resultCtl := results.NewController(app.Client, cfg.APITimeout, nil, app.Logger)
			workflow := scrape.NewWorkflow(app.Client, resultCtl, cfg.FilesBaseURL, func(st scrape.Status) {
				app.Logger.Debug("scrape state", zap.String("state", string(st.State)))
			}, app.Logger)

			checker := watcher.New(cfg.WatchCron, cfg.WatchProfile, store, limiter, workflow, resultCtl, notifier, app.Logger)

			app.Logger.Info("watching",
				zap.String("profile", cfg.WatchProfile),
				zap.String("cron", cfg.WatchCron),
			)

			return checker.Start(ctx)
		},
	}

	cmd.Flags().String("cron", "", "Cron spec overriding WATCH_CRON")
	cmd.Flags().String("profile", "", "Profile overriding WATCH_PROFILE")
	return cmd
}
