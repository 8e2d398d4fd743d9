package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/solon/internal/domain/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func Test_CredentialChecker_ShouldPublishOnlyChanges(t *testing.T) {

	bus := EventBus.New()
	var published []bool
	require.NoError(t, bus.Subscribe(events.CredentialChangedTopic, func(event events.CredentialChanged) {
		published = append(published, event.Valid)
	}))

	answers := []error{
		nil,
		nil,
		errors.New("Error 400, Message: API key not valid. Please pass a valid API key., Status: INVALID_ARGUMENT"),
		errors.New("dial tcp: i/o timeout"),
		nil,
	}
	check := func(_ context.Context) error {
		err := answers[0]
		answers = answers[1:]
		return err
	}

	checker, err := NewCredentialChecker(check, bus, "@hourly")
	require.NoError(t, err)

	assert.True(t, checker.Check(context.Background()))
	assert.True(t, checker.Check(context.Background()))
	assert.False(t, checker.Check(context.Background()))
	assert.False(t, checker.Check(context.Background()), "unrelated failure keeps the verdict")
	assert.True(t, checker.Check(context.Background()))

	assert.Equal(t, []bool{true, false, true}, published)
}

func Test_CredentialChecker_WhenUnrelatedFailureFirst_ShouldStayUndecided(t *testing.T) {

	bus := EventBus.New()
	published := 0
	require.NoError(t, bus.Subscribe(events.CredentialChangedTopic, func(_ events.CredentialChanged) { published++ }))

	checker, err := NewCredentialChecker(func(_ context.Context) error { return errors.New("dial tcp: i/o timeout") },
		bus, "@hourly")
	require.NoError(t, err)

	assert.False(t, checker.Check(context.Background()))
	assert.Zero(t, published)
}

func Test_NewCredentialChecker_WhenInvalidSchedule_ShouldFail(t *testing.T) {
	_, err := NewCredentialChecker(func(_ context.Context) error { return nil }, EventBus.New(), "not a schedule")
	assert.Error(t, err)
}

func Test_CredentialChecker_StartStop(t *testing.T) {

	bus := EventBus.New()
	valid := make(chan bool, 1)
	require.NoError(t, bus.Subscribe(events.CredentialChangedTopic, func(event events.CredentialChanged) {
		valid <- event.Valid
	}))

	checker, err := NewCredentialChecker(func(_ context.Context) error { return nil }, bus, "@hourly")
	require.NoError(t, err)

	checker.Start(context.Background())
	checker.Stop()

	assert.True(t, <-valid)
}
