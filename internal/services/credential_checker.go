package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/solon/internal/clients/gemini"
	"github.com/maxaizer/solon/internal/domain/events"
	"github.com/maxaizer/solon/internal/logger"
	"github.com/maxaizer/solon/internal/metrics"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"strings"
	"sync"
	"time"
)

const credentialCheckTimeout = 30 * time.Second

// rejectionPhrases are the API answers for keys that are invalid or lack permissions.
var rejectionPhrases = []string{"API key not valid", "PERMISSION_DENIED", "UNAUTHENTICATED"}

// CheckFunc verifies the shared credential, nil means it is usable.
type CheckFunc func(ctx context.Context) error

// CredentialChecker verifies the shared api key on start and then on a cron schedule.
// Every change of the verdict is published as events.CredentialChanged.
type CredentialChecker struct {
	check CheckFunc
	bus   EventBus.Bus
	cron  *cron.Cron

	mu    sync.Mutex
	valid *bool
}

func NewCredentialChecker(check CheckFunc, bus EventBus.Bus, schedule string) (*CredentialChecker, error) {

	if check == nil {
		return nil, errors.New("check func is nil")
	}
	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	cc := &CredentialChecker{check: check, bus: bus, cron: cron.New()}

	_, err := cc.cron.AddFunc(schedule, func() { cc.Check(context.Background()) })
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schedule %q", schedule)
	}
	return cc, nil
}

// Start runs the first check synchronously and schedules the next ones.
func (cc *CredentialChecker) Start(ctx context.Context) {
	cc.Check(ctx)
	cc.cron.Start()
	log.Infof("credential checker started")
}

func (cc *CredentialChecker) Stop() {
	<-cc.cron.Stop().Done()
}

// Check verifies the credential once and returns the verdict. A failure that says nothing
// about the credential keeps the previous verdict.
func (cc *CredentialChecker) Check(ctx context.Context) bool {

	ctx, cancel := context.WithTimeout(ctx, credentialCheckTimeout)
	defer cancel()

	err := cc.check(ctx)
	if err != nil && !isRejectedCredential(err) {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).Errorf("credential check failed: %v", err)
		return cc.lastVerdict()
	}
	if err != nil {
		log.Warnf("shared credential is not usable: %v", err)
	}
	valid := err == nil

	if valid {
		metrics.CredentialValid.Set(1)
	} else {
		metrics.CredentialValid.Set(0)
	}

	cc.mu.Lock()
	changed := cc.valid == nil || *cc.valid != valid
	cc.valid = &valid
	cc.mu.Unlock()

	if changed {
		log.Infof("shared credential valid: %v", valid)
		cc.bus.Publish(events.CredentialChangedTopic, events.CredentialChanged{Valid: valid})
	}
	return valid
}

func (cc *CredentialChecker) lastVerdict() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.valid != nil && *cc.valid
}

// PoolCredentialCheck checks the default key of the pool.
func PoolCredentialCheck(pool *gemini.Pool) CheckFunc {
	return func(ctx context.Context) error {
		client, err := pool.Client(ctx, "")
		if err != nil {
			return err
		}
		return client.CheckCredential(ctx)
	}
}

func isRejectedCredential(err error) bool {
	if IsCredentialError(err) {
		return true
	}
	message := err.Error()
	return lo.SomeBy(rejectionPhrases, func(phrase string) bool {
		return strings.Contains(message, phrase)
	})
}
