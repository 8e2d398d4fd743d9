package main

import (
	"context"
	"errors"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/solon/internal/bot"
	"github.com/maxaizer/solon/internal/config"
	"github.com/maxaizer/solon/internal/logger"
	"github.com/maxaizer/solon/internal/metrics"
	"github.com/maxaizer/solon/internal/services"
	"github.com/maxaizer/solon/internal/session"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := config.Get()
		if err := cfg.ValidateBot(); err != nil {
			return err
		}

		logger.Setup(ctx, cfg.Logger)
		defer logger.Cleanup()

		return runBot(ctx, cfg)
	},
}

func runBot(ctx context.Context, cfg *config.Config) error {

	location, err := cfg.Session.Location()
	if err != nil {
		return err
	}

	bus := EventBus.New()
	pool := newPool(cfg.AI)
	sessions := session.NewManager(cfg.Session.IdleTTL, services.ClassifyFailure)
	dispatcher := services.NewDispatcher(newRecommender(cfg.AI, pool), bus, cfg.AI.RequestTimeout)

	tgBot, err := bot.NewBot(cfg.Bot.Token, bus, sessions, dispatcher, bot.Options{
		FavorableFromHour: cfg.Session.FavorableFromHour,
		FavorableToHour:   cfg.Session.FavorableToHour,
		Location:          location,
	})
	if err != nil {
		return err
	}

	checker, err := services.NewCredentialChecker(services.PoolCredentialCheck(pool), bus, cfg.AI.CredentialCheckCron)
	if err != nil {
		return err
	}
	checker.Start(ctx)
	defer checker.Stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		tgBot.Run(groupCtx)
		if groupCtx.Err() == nil {
			return errors.New("bot stopped receiving updates")
		}
		return nil
	})

	if cfg.Metrics.Enabled {
		server := metrics.NewServer(cfg.Metrics.Address)
		group.Go(func() error {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	err = group.Wait()

	log.Info("Shutting down services...")
	sessions.Close()
	dispatcher.Wait()
	log.Info("Services stopped.")
	return err
}
