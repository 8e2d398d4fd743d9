package gemini

import (
	"context"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

type Model string

const (
	//Model25Flash is the default model, the 2.5 series is required for Google Maps grounding
	Model25Flash Model = "gemini-2.5-flash"
	//Model25FlashLite is the cheapest 2.5 model
	Model25FlashLite Model = "gemini-2.5-flash-lite"
	//Model25Pro is the most capable 2.5 model
	Model25Pro Model = "gemini-2.5-pro"
)

type LatLng struct {
	Latitude  float64
	Longitude float64
}

type Request struct {
	SystemInstruction string
	Prompt            string
	WebSearch         bool
	MapSearch         bool
	Temperature       float32
	LatLng            *LatLng
}

// GroundingSource is one grounding chunk of the reply, at most one of the URIs is usually set.
type GroundingSource struct {
	WebURI  string
	MapsURI string
}

type Reply struct {
	Text    string
	Sources []GroundingSource
}

type Client struct {
	client            *genai.Client
	model             Model
	minuteRateLimiter *rate.Limiter
	dayRateLimiter    *rate.Limiter
}

func NewClient(ctx context.Context, apiKey string, model Model) (*Client, error) {

	if apiKey == "" {
		return nil, errors.New("api key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}

	return &Client{client: client, model: model}, nil
}

func (c *Client) SetMinuteRateLimit(maxRequestsPerMinute float32) {
	if maxRequestsPerMinute <= 0 {
		c.minuteRateLimiter = nil
		return
	}
	c.minuteRateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerMinute/60), 1)
}

func (c *Client) SetDayRateLimit(maxRequestsPerDay float32) {
	if maxRequestsPerDay <= 0 {
		c.dayRateLimiter = nil
		return
	}
	c.dayRateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerDay/86400), int(maxRequestsPerDay))
}

func (c *Client) Model() Model {
	return c.model
}

// GenerateContent issues exactly one generation call. Errors are returned as reported by the API.
func (c *Client) GenerateContent(ctx context.Context, request Request) (*Reply, error) {

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	response, err := c.client.Models.GenerateContent(ctx, string(c.model), genai.Text(request.Prompt),
		buildConfig(request))
	if err != nil {
		return nil, err
	}

	return toReply(response), nil
}

// CheckCredential asks the API for the configured model, which fails for unknown or unbilled keys.
func (c *Client) CheckCredential(ctx context.Context) error {
	_, err := c.client.Models.Get(ctx, string(c.model), nil)
	return err
}

func (c *Client) wait(ctx context.Context) error {
	limiters := []*rate.Limiter{c.minuteRateLimiter, c.dayRateLimiter}
	for _, limiter := range limiters {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildConfig(request Request) *genai.GenerateContentConfig {

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(request.Temperature),
	}

	if request.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemInstruction, genai.RoleUser)
	}

	if request.WebSearch {
		config.Tools = append(config.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if request.MapSearch {
		config.Tools = append(config.Tools, &genai.Tool{GoogleMaps: &genai.GoogleMaps{}})
	}

	if request.LatLng != nil {
		config.ToolConfig = &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{
					Latitude:  genai.Ptr(request.LatLng.Latitude),
					Longitude: genai.Ptr(request.LatLng.Longitude),
				},
			},
		}
	}

	return config
}

func toReply(response *genai.GenerateContentResponse) *Reply {

	reply := &Reply{Text: response.Text()}

	if len(response.Candidates) == 0 || response.Candidates[0].GroundingMetadata == nil {
		return reply
	}

	for _, chunk := range response.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil {
			continue
		}
		var source GroundingSource
		if chunk.Web != nil {
			source.WebURI = chunk.Web.URI
		}
		if chunk.Maps != nil {
			source.MapsURI = chunk.Maps.URI
		}
		reply.Sources = append(reply.Sources, source)
	}

	return reply
}
