package models

type Capability string

const (
	CapabilityWebSearch Capability = "web-search"
	CapabilityMapSearch Capability = "map-search"
)

type RequestConfig struct {
	Capabilities []Capability
	Temperature  float32
	LocationBias *Coordinates
}

// RecommendationRequest is the outbound query for one submission.
type RecommendationRequest struct {
	Model             string
	SystemInstruction string
	Prompt            string
	Config            RequestConfig
}

type RecommendationResult struct {
	ProfileJobs []JobEntry          `json:"profileJobs"`
	NearbyJobs  []JobEntry          `json:"nearbyJobs"`
	Investment  *InvestmentStrategy `json:"investment"`
	Status      string              `json:"text"`
	Sources     []string            `json:"sources"`
}

func (r *RecommendationResult) HasInvestment() bool {
	return r != nil && r.Investment != nil
}
