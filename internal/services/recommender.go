package services

import (
	"context"
	"github.com/maxaizer/solon/internal/clients/gemini"
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/maxaizer/solon/internal/logger"
	"github.com/maxaizer/solon/internal/metrics"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"time"
)

type AIClient interface {
	GenerateContent(ctx context.Context, request gemini.Request) (*gemini.Reply, error)
}

// ClientFactory returns the client for an api key, an empty key means the shared one.
type ClientFactory func(ctx context.Context, apiKey string) (AIClient, error)

func PoolClients(pool *gemini.Pool) ClientFactory {
	return func(ctx context.Context, apiKey string) (AIClient, error) {
		client, err := pool.Client(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

type Recommender struct {
	builder *RequestBuilder
	clients ClientFactory
}

func NewRecommender(builder *RequestBuilder, clients ClientFactory) *Recommender {
	return &Recommender{builder: builder, clients: clients}
}

// Recommend issues exactly one request for the profile. It never retries; errors are
// *RecommendationError values matching ErrCredential, ErrParse or ErrTransport.
func (r *Recommender) Recommend(ctx context.Context, requestID string, apiKey string,
	profile models.ProfileSnapshot) (*models.RecommendationResult, error) {

	entry := log.WithField("request_id", requestID)
	request := r.builder.BuildNow(profile)

	client, err := r.clients(ctx, apiKey)
	if err != nil {
		return nil, r.fail(entry, classifyTransportError(profile.Language, err))
	}

	entry.Infof("requesting recommendations for %v, %v", profile.Location, profile.Country)
	start := time.Now()
	reply, err := client.GenerateContent(ctx, toGeminiRequest(request))
	metrics.RecommendationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, r.fail(entry, classifyTransportError(profile.Language, err))
	}

	parsed, err := parseReply(reply.Text)
	if err != nil {
		entry.Debugf("unparseable reply: %q", reply.Text)
		return nil, r.fail(entry, newParseFailure(profile.Language, err))
	}

	result := &models.RecommendationResult{
		ProfileJobs: parsed.ProfileJobs,
		NearbyJobs:  parsed.NearbyJobs,
		Investment:  parsed.Investment,
		Status:      profile.Language.Pick("Sincronía establecida.", "Synchrony established."),
		Sources:     collectSources(reply.Sources),
	}

	metrics.RecommendationsCounter.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.ReturnedJobs.WithLabelValues("profile").Observe(float64(len(result.ProfileJobs)))
	metrics.ReturnedJobs.WithLabelValues("map").Observe(float64(len(result.NearbyJobs)))
	entry.Infof("got %v profile jobs, %v map jobs, investment: %v, sources: %v",
		len(result.ProfileJobs), len(result.NearbyJobs), result.HasInvestment(), len(result.Sources))

	return result, nil
}

func (r *Recommender) fail(entry *log.Entry, err *RecommendationError) error {

	var outcome, errorType string
	switch err.Kind {
	case ErrCredential:
		outcome, errorType = metrics.OutcomeCredentialError, logger.ErrorTypeCredential
	case ErrParse:
		outcome, errorType = metrics.OutcomeParseFailure, logger.ErrorTypeAiParse
	default:
		outcome, errorType = metrics.OutcomeTransportError, logger.ErrorTypeAiApi
	}

	metrics.RecommendationsCounter.WithLabelValues(outcome).Inc()
	entry.WithField(logger.ErrorTypeField, errorType).Errorf("recommendation failed: %v", err)
	return err
}

func toGeminiRequest(request models.RecommendationRequest) gemini.Request {

	geminiRequest := gemini.Request{
		SystemInstruction: request.SystemInstruction,
		Prompt:            request.Prompt,
		WebSearch:         lo.Contains(request.Config.Capabilities, models.CapabilityWebSearch),
		MapSearch:         lo.Contains(request.Config.Capabilities, models.CapabilityMapSearch),
		Temperature:       request.Config.Temperature,
	}

	if bias := request.Config.LocationBias; bias != nil {
		geminiRequest.LatLng = &gemini.LatLng{Latitude: bias.Latitude, Longitude: bias.Longitude}
	}

	return geminiRequest
}

// collectSources takes the web uri, else the maps uri, of every chunk and drops empty ones.
// The same uri may appear twice when both kinds point to it.
func collectSources(sources []gemini.GroundingSource) []string {
	return lo.FilterMap(sources, func(source gemini.GroundingSource, _ int) (string, bool) {
		uri := source.WebURI
		if uri == "" {
			uri = source.MapsURI
		}
		return uri, uri != ""
	})
}
