package main

import (
	"context"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/maxaizer/solon/internal/config"
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/maxaizer/solon/internal/logger"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
)

type recommendFlags struct {
	country   string
	location  string
	age       int
	sex       string
	language  string
	latitude  float64
	longitude float64
	apiKey    string
}

var recommendArgs recommendFlags

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run one recommendation request and print the result as JSON",
	Example: `  solon recommend --location "Ciudad de México" --age 25 --sex Otro
  solon recommend --country "Estados Unidos" --location Houston --age 40 --language Inglés --lat 29.76 --lng -95.37`,
	RunE: func(cmd *cobra.Command, args []string) error {

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := config.Get()
		logger.Setup(ctx, cfg.Logger)
		defer logger.Cleanup()

		profile, err := recommendArgs.profile(cmd)
		if err != nil {
			return err
		}

		if cfg.AI.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.AI.RequestTimeout)
			defer cancel()
		}

		recommender := newRecommender(cfg.AI, newPool(cfg.AI))
		result, err := recommender.Recommend(ctx, uuid.NewString(), recommendArgs.apiKey, profile)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	},
}

func init() {
	flags := recommendCmd.Flags()
	flags.StringVar(&recommendArgs.country, "country", string(models.Mexico), "México or Estados Unidos")
	flags.StringVar(&recommendArgs.location, "location", "", "city or area to search in")
	flags.IntVar(&recommendArgs.age, "age", 0, "age, 16 to 99")
	flags.StringVar(&recommendArgs.sex, "sex", "", "sex")
	flags.StringVar(&recommendArgs.language, "language", string(models.Spanish), "Español or Inglés")
	flags.Float64Var(&recommendArgs.latitude, "lat", 0, "latitude of the user, requires --lng")
	flags.Float64Var(&recommendArgs.longitude, "lng", 0, "longitude of the user, requires --lat")
	flags.StringVar(&recommendArgs.apiKey, "api-key", "", "Gemini api key (default: ai.key from config)")
	_ = recommendCmd.MarkFlagRequired("location")
	_ = recommendCmd.MarkFlagRequired("age")
	recommendCmd.MarkFlagsRequiredTogether("lat", "lng")
}

func (f recommendFlags) profile(cmd *cobra.Command) (models.ProfileSnapshot, error) {

	country, err := models.ToCountry(f.country)
	if err != nil {
		return models.ProfileSnapshot{}, err
	}
	language, err := models.ToLanguage(f.language)
	if err != nil {
		return models.ProfileSnapshot{}, err
	}

	var coordinates *models.Coordinates
	if cmd.Flags().Changed("lat") {
		coordinates = &models.Coordinates{Latitude: f.latitude, Longitude: f.longitude}
	}

	return models.NewProfileSnapshot(country, f.location, f.age, f.sex, language, coordinates)
}
