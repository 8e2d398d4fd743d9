package session

import (
	"context"
	"errors"
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"sync"
	"testing"
	"time"
)

var errCredentialRejected = errors.New("Requested entity was not found")

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))
}

func classifyForTest(err error, language models.Language) (string, bool) {
	if errors.Is(err, errCredentialRejected) {
		return language.Pick("API Key Error: Facturación requerida.", "API Key Error: Billing required."), true
	}
	return language.Pick("Error en sincronización de patrones.", "Pattern synchronization error."), false
}

func testProfile(language models.Language) models.ProfileSnapshot {
	return models.ProfileSnapshot{
		Country:  models.Mexico,
		Location: "Monterrey",
		Age:      25,
		Sex:      "Masculino",
		Language: language,
	}
}

func activeSession(t *testing.T) *Session {
	s := newSession(1, classifyForTest, &sync.WaitGroup{})
	s.ApplyCheck(true)
	require.Equal(t, CredentialActive, s.Credential())
	return s
}

func returning(result *models.RecommendationResult, err error) RunFunc {
	return func(_ context.Context, _ Request) (*models.RecommendationResult, error) {
		return result, err
	}
}

// blocking waits until released or cancelled.
func blocking(release <-chan struct{}, result *models.RecommendationResult) RunFunc {
	return func(ctx context.Context, _ Request) (*models.RecommendationResult, error) {
		select {
		case <-release:
			return result, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func waitOutcome(t *testing.T, done <-chan Outcome) Outcome {
	select {
	case outcome := <-done:
		return outcome
	case <-time.After(5 * time.Second):
		t.Fatal("request did not finish")
		return Outcome{}
	}
}

func Test_Submit_WhenSucceeded_ShouldShowSelectionWithResult(t *testing.T) {

	s := activeSession(t)
	result := &models.RecommendationResult{ProfileJobs: []models.JobEntry{{CompanyName: "A"}}}

	done, err := s.Submit(context.Background(), testProfile(models.Spanish), returning(result, nil))
	require.NoError(t, err)

	outcome := waitOutcome(t, done)
	assert.True(t, outcome.Applied)
	assert.NoError(t, outcome.Err)
	assert.NotEmpty(t, outcome.RequestID)

	state := s.State()
	assert.Equal(t, ViewResults, state.View)
	assert.Equal(t, SubViewSelection, state.SubView)
	assert.Same(t, result, state.Result)
	require.NotNil(t, state.Profile)
	assert.Equal(t, "Monterrey", state.Profile.Location)
}

func Test_Submit_WhenCredentialRejected_ShouldDenyAndShowBillingMessage(t *testing.T) {

	s := activeSession(t)

	done, err := s.Submit(context.Background(), testProfile(models.English), returning(nil, errCredentialRejected))
	require.NoError(t, err)

	outcome := waitOutcome(t, done)
	assert.True(t, outcome.Applied)
	assert.True(t, outcome.CredentialError)
	assert.Equal(t, "API Key Error: Billing required.", outcome.Message)

	state := s.State()
	assert.Equal(t, ViewError, state.View)
	assert.Equal(t, CredentialDenied, state.Credential)
	assert.Equal(t, "API Key Error: Billing required.", state.ErrorMessage)

	_, err = s.Submit(context.Background(), testProfile(models.English), returning(nil, nil))
	assert.ErrorIs(t, err, ErrNoCredential)
}

func Test_Submit_WhenOtherFailure_ShouldShowGenericMessageAndKeepCredential(t *testing.T) {

	s := activeSession(t)

	done, err := s.Submit(context.Background(), testProfile(models.Spanish), returning(nil, errors.New("boom")))
	require.NoError(t, err)

	outcome := waitOutcome(t, done)
	assert.False(t, outcome.CredentialError)

	state := s.State()
	assert.Equal(t, ViewError, state.View)
	assert.Equal(t, CredentialActive, state.Credential)
	assert.Equal(t, "Error en sincronización de patrones.", state.ErrorMessage)
}

func Test_Submit_WhenInFlight_ShouldReject(t *testing.T) {

	s := activeSession(t)
	release := make(chan struct{})

	done, err := s.Submit(context.Background(), testProfile(models.Spanish), blocking(release, nil))
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), testProfile(models.Spanish), returning(nil, nil))
	assert.ErrorIs(t, err, ErrRequestInFlight)
	assert.False(t, s.AcceptsLocation())

	close(release)
	assert.True(t, waitOutcome(t, done).Applied)
	assert.True(t, s.AcceptsLocation())
}

func Test_Submit_WhenNoCredential_ShouldReject(t *testing.T) {

	s := newSession(1, classifyForTest, nil)

	_, err := s.Submit(context.Background(), testProfile(models.Spanish), returning(nil, nil))

	assert.ErrorIs(t, err, ErrNoCredential)
	assert.Equal(t, ViewProfileEntry, s.View())
}

func Test_Cancel_WhenInFlight_ShouldAbortAndDiscardResult(t *testing.T) {

	s := activeSession(t)
	release := make(chan struct{})
	defer close(release)

	done, err := s.Submit(context.Background(), testProfile(models.Spanish), blocking(release, &models.RecommendationResult{}))
	require.NoError(t, err)

	assert.True(t, s.Cancel())
	outcome := waitOutcome(t, done)

	assert.False(t, outcome.Applied)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.Equal(t, ViewProfileEntry, s.View())
	assert.Nil(t, s.State().Result)
	assert.False(t, s.Cancel())
}

func Test_Submit_WhenResubmittedAfterReset_ShouldIgnoreStaleResult(t *testing.T) {

	s := activeSession(t)
	staleRelease := make(chan struct{})
	stale := &models.RecommendationResult{Status: "stale"}
	fresh := &models.RecommendationResult{Status: "fresh"}

	staleRun := func(_ context.Context, _ Request) (*models.RecommendationResult, error) {
		<-staleRelease
		return stale, nil
	}

	staleDone, err := s.Submit(context.Background(), testProfile(models.Spanish), staleRun)
	require.NoError(t, err)

	s.Reset()
	freshDone, err := s.Submit(context.Background(), testProfile(models.Spanish), returning(fresh, nil))
	require.NoError(t, err)
	assert.True(t, waitOutcome(t, freshDone).Applied)

	close(staleRelease)
	assert.False(t, waitOutcome(t, staleDone).Applied)
	assert.Same(t, fresh, s.State().Result)
}

func Test_Reset_ShouldKeepCredential(t *testing.T) {

	s := activeSession(t)
	done, err := s.Submit(context.Background(), testProfile(models.Spanish), returning(&models.RecommendationResult{}, nil))
	require.NoError(t, err)
	waitOutcome(t, done)

	s.Reset()

	state := s.State()
	assert.Equal(t, ViewProfileEntry, state.View)
	assert.Nil(t, state.Profile)
	assert.Nil(t, state.Result)
	assert.Equal(t, CredentialActive, state.Credential)
}

func Test_Subviews_ShouldFollowResult(t *testing.T) {

	s := activeSession(t)
	assert.ErrorIs(t, s.ShowJobs(JobsMap), ErrNoResults)

	done, err := s.Submit(context.Background(), testProfile(models.Spanish), returning(&models.RecommendationResult{}, nil))
	require.NoError(t, err)
	waitOutcome(t, done)

	assert.ErrorIs(t, s.ShowInvestment(), ErrNoInvestment)
	require.NoError(t, s.ShowJobs(JobsMap))
	assert.Equal(t, SubViewJobs, s.State().SubView)
	assert.Equal(t, JobsMap, s.State().JobsMode)
	require.NoError(t, s.ShowSelection())
	assert.Equal(t, SubViewSelection, s.State().SubView)

	s.Reset()
	done, err = s.Submit(context.Background(), testProfile(models.Spanish),
		returning(&models.RecommendationResult{Investment: &models.InvestmentStrategy{InitialCapital: 500}}, nil))
	require.NoError(t, err)
	waitOutcome(t, done)

	require.NoError(t, s.ShowInvestment())
	assert.Equal(t, SubViewInvestment, s.State().SubView)
}

func Test_Activation_ShouldFollowCredentialTransitions(t *testing.T) {

	s := newSession(1, classifyForTest, nil)

	require.NoError(t, s.BeginActivation())
	assert.Equal(t, CredentialActivating, s.Credential())

	s.ApplyCheck(false)
	assert.Equal(t, CredentialActivating, s.Credential(), "checks are ignored while activating")

	require.NoError(t, s.CompleteActivation("user-key"))
	assert.Equal(t, CredentialActive, s.Credential())
	assert.True(t, s.State().OwnKey)

	s.ApplyCheck(false)
	assert.Equal(t, CredentialActive, s.Credential(), "own key ignores shared checks")

	var transitionErr *InvalidTransitionError
	assert.ErrorAs(t, s.BeginActivation(), &transitionErr)

	s.Deny()
	assert.Equal(t, CredentialDenied, s.Credential())
	assert.False(t, s.State().OwnKey)

	require.NoError(t, s.BeginActivation())
	require.NoError(t, s.AbortActivation())
	assert.Equal(t, CredentialDenied, s.Credential())

	s.ApplyCheck(true)
	assert.Equal(t, CredentialActive, s.Credential())
}

func Test_Submit_ShouldPassOwnKeyAndProfile(t *testing.T) {

	s := newSession(1, classifyForTest, nil)
	require.NoError(t, s.BeginActivation())
	require.NoError(t, s.CompleteActivation("user-key"))

	var got Request
	done, err := s.Submit(context.Background(), testProfile(models.English),
		func(_ context.Context, request Request) (*models.RecommendationResult, error) {
			got = request
			return nil, nil
		})
	require.NoError(t, err)
	outcome := waitOutcome(t, done)

	assert.Equal(t, "user-key", got.APIKey)
	assert.Equal(t, models.English, got.Profile.Language)
	assert.Equal(t, outcome.RequestID, got.ID)
	assert.NotNil(t, s.State().Result, "a missing result is shown as an empty one")
}
