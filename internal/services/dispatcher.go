package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/solon/internal/domain/events"
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/maxaizer/solon/internal/session"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

type recommender interface {
	Recommend(ctx context.Context, requestID string, apiKey string,
		profile models.ProfileSnapshot) (*models.RecommendationResult, error)
}

// Dispatcher submits profiles to sessions and publishes the outcome on the bus.
type Dispatcher struct {
	recommender recommender
	bus         EventBus.Bus
	timeout     time.Duration
	wg          sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A zero timeout leaves requests bounded only by cancellation.
func NewDispatcher(recommender recommender, bus EventBus.Bus, timeout time.Duration) *Dispatcher {
	return &Dispatcher{recommender: recommender, bus: bus, timeout: timeout}
}

func (d *Dispatcher) Dispatch(ctx context.Context, s *session.Session, profile models.ProfileSnapshot) error {

	done, err := s.Submit(ctx, profile, d.run)
	if err != nil {
		return err
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.publish(s.ChatID(), <-done)
	}()
	return nil
}

// Wait blocks until every dispatched outcome is published.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, request session.Request) (*models.RecommendationResult, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return d.recommender.Recommend(ctx, request.ID, request.APIKey, request.Profile)
}

func (d *Dispatcher) publish(chatID int64, outcome session.Outcome) {

	if !outcome.Applied {
		log.WithField("request_id", outcome.RequestID).Infof("request of chat %v was cancelled or replaced", chatID)
		return
	}

	if outcome.Err == nil {
		d.bus.Publish(events.RecommendationReadyTopic, events.RecommendationReady{
			ChatID:    chatID,
			RequestID: outcome.RequestID,
		})
		return
	}

	d.bus.Publish(events.RecommendationFailedTopic, events.RecommendationFailed{
		ChatID:          chatID,
		RequestID:       outcome.RequestID,
		Message:         outcome.Message,
		CredentialError: outcome.CredentialError,
	})
}
