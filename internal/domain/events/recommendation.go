package events

var (
	RecommendationReadyTopic  = "RecommendationReadyEvent"
	RecommendationFailedTopic = "RecommendationFailedEvent"
	CredentialChangedTopic    = "CredentialChangedEvent"
)

type RecommendationReady struct {
	ChatID    int64
	RequestID string
}

type RecommendationFailed struct {
	ChatID          int64
	RequestID       string
	Message         string
	CredentialError bool
}

// CredentialChanged is published when the shared credential check flips between valid and invalid.
type CredentialChanged struct {
	Valid bool
}
