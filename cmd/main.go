package main

import (
	"context"
	"github.com/maxaizer/solon/internal/clients/gemini"
	"github.com/maxaizer/solon/internal/config"
	"github.com/maxaizer/solon/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "solon",
	Short: "Job and micro-investment recommendations grounded on live web and maps search",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			_ = os.Setenv("CONFIG_PATH", configPath)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: $CONFIG_PATH or ./configs/config.yaml)")
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(recommendCmd)
}

func newPool(cfg config.AIConfig) *gemini.Pool {
	return gemini.NewPool(cfg.Key, gemini.Model(cfg.Model), gemini.Limits{
		MaxRequestsPerMinute: cfg.MaxRequestsPerMinute,
		MaxRequestsPerDay:    cfg.MaxRequestsPerDay,
	})
}

func newRecommender(cfg config.AIConfig, pool *gemini.Pool) *services.Recommender {
	return services.NewRecommender(services.NewRequestBuilder(cfg.Model, nil), services.PoolClients(pool))
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
