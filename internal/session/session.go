package session

import (
	"context"
	"github.com/google/uuid"
	"github.com/maxaizer/solon/internal/domain/models"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sync"
)

var (
	ErrRequestInFlight = errors.New("a request is already in flight")
	ErrNoCredential    = errors.New("no active credential")
	ErrNoResults       = errors.New("no results to show")
	ErrNoInvestment    = errors.New("result has no investment strategy")
)

type Request struct {
	ID      string
	APIKey  string
	Profile models.ProfileSnapshot
}

type RunFunc func(ctx context.Context, request Request) (*models.RecommendationResult, error)

// FailureClassifier turns a failed request into the message shown to the user and tells
// whether the credential has to be considered invalid.
type FailureClassifier func(err error, language models.Language) (message string, credential bool)

// Outcome is sent once per submission. Applied is false when the session moved on
// (cancel, reset or a newer submission) before the request finished.
type Outcome struct {
	RequestID       string
	Applied         bool
	Err             error
	Message         string
	CredentialError bool
}

type State struct {
	Credential   CredentialState
	OwnKey       bool
	View         View
	SubView      SubView
	JobsMode     JobsMode
	Profile      *models.ProfileSnapshot
	Result       *models.RecommendationResult
	ErrorMessage string
}

type Session struct {
	mu       sync.Mutex
	chatID   int64
	classify FailureClassifier
	wg       *sync.WaitGroup

	credential CredentialState
	apiKey     string

	view         View
	subView      SubView
	jobsMode     JobsMode
	profile      *models.ProfileSnapshot
	result       *models.RecommendationResult
	errorMessage string

	ticket    uint64
	requestID string
	cancel    context.CancelFunc
}

func newSession(chatID int64, classify FailureClassifier, wg *sync.WaitGroup) *Session {
	return &Session{
		chatID:     chatID,
		classify:   classify,
		wg:         wg,
		credential: CredentialUnknown,
		view:       ViewProfileEntry,
		subView:    SubViewSelection,
		jobsMode:   JobsProfile,
	}
}

func (s *Session) ChatID() int64 {
	return s.chatID
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Credential:   s.credential,
		OwnKey:       s.apiKey != "",
		View:         s.view,
		SubView:      s.subView,
		JobsMode:     s.jobsMode,
		Profile:      s.profile,
		Result:       s.result,
		ErrorMessage: s.errorMessage,
	}
}

func (s *Session) Credential() CredentialState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// AcceptsLocation reports whether a shared location can still become part of the profile.
// Once a request is submitted late locations are dropped.
func (s *Session) AcceptsLocation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view != ViewLoading
}

// Submit starts the request in its own goroutine. The returned channel receives exactly one
// Outcome and is closed afterwards.
func (s *Session) Submit(ctx context.Context, profile models.ProfileSnapshot, run RunFunc) (<-chan Outcome, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view == ViewLoading {
		return nil, ErrRequestInFlight
	}
	if s.credential != CredentialActive {
		return nil, ErrNoCredential
	}

	requestCtx, cancel := context.WithCancel(ctx)
	s.ticket++
	s.cancel = cancel
	s.requestID = uuid.NewString()
	s.view = ViewLoading
	s.errorMessage = ""
	s.profile = &profile

	request := Request{ID: s.requestID, APIKey: s.apiKey, Profile: profile}
	ticket := s.ticket
	done := make(chan Outcome, 1)

	if s.wg != nil {
		s.wg.Add(1)
	}
	go func() {
		if s.wg != nil {
			defer s.wg.Done()
		}
		defer close(done)
		defer cancel()

		result, err := run(requestCtx, request)
		done <- s.complete(ticket, request, result, err)
	}()

	return done, nil
}

func (s *Session) complete(ticket uint64, request Request, result *models.RecommendationResult, err error) Outcome {

	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := Outcome{RequestID: request.ID, Err: err}
	if ticket != s.ticket || s.view != ViewLoading {
		log.WithField("request_id", request.ID).Debugf("discarding outdated result for chat %v", s.chatID)
		return outcome
	}

	outcome.Applied = true
	s.cancel = nil

	if err == nil {
		if result == nil {
			result = &models.RecommendationResult{}
		}
		s.result = result
		s.view = ViewResults
		s.subView = SubViewSelection
		s.jobsMode = JobsProfile
		return outcome
	}

	message, credential := s.classify(err, request.Profile.Language)
	outcome.Message = message
	outcome.CredentialError = credential

	s.view = ViewError
	s.errorMessage = message
	if credential {
		s.denyLocked()
	}
	return outcome
}

// Cancel aborts the in-flight request and returns to profile entry. It reports whether
// there was anything to cancel.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != ViewLoading {
		return false
	}
	s.abortLocked()
	s.view = ViewProfileEntry
	return true
}

// Reset aborts any request and forgets the profile and the result. The credential is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.abortLocked()
	s.view = ViewProfileEntry
	s.subView = SubViewSelection
	s.jobsMode = JobsProfile
	s.profile = nil
	s.result = nil
	s.errorMessage = ""
}

func (s *Session) abortLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.ticket++
}

func (s *Session) ShowSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != ViewResults {
		return ErrNoResults
	}
	s.subView = SubViewSelection
	return nil
}

func (s *Session) ShowJobs(mode JobsMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != ViewResults {
		return ErrNoResults
	}
	s.subView = SubViewJobs
	s.jobsMode = mode
	return nil
}

func (s *Session) ShowInvestment() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view != ViewResults {
		return ErrNoResults
	}
	if !s.result.HasInvestment() {
		return ErrNoInvestment
	}
	s.subView = SubViewInvestment
	return nil
}

func (s *Session) BeginActivation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveCredentialLocked(CredentialActivating)
}

// CompleteActivation accepts the key without checking it. A bad key shows up as a
// credential error on the first request.
func (s *Session) CompleteActivation(apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.moveCredentialLocked(CredentialActive); err != nil {
		return err
	}
	s.apiKey = apiKey
	return nil
}

func (s *Session) AbortActivation() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.credential != CredentialActivating {
		return nil
	}
	return s.moveCredentialLocked(CredentialDenied)
}

// ApplyCheck applies the result of a shared credential check. Sessions that brought their
// own key or are in the middle of activation ignore it.
func (s *Session) ApplyCheck(valid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.apiKey != "" || s.credential == CredentialActivating {
		return
	}

	target := CredentialDenied
	if valid {
		target = CredentialActive
	}
	if s.credential == target {
		return
	}
	_ = s.moveCredentialLocked(target)
}

func (s *Session) Deny() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denyLocked()
}

func (s *Session) denyLocked() {
	s.apiKey = ""
	if s.credential == CredentialDenied {
		return
	}
	_ = s.moveCredentialLocked(CredentialDenied)
}

func (s *Session) moveCredentialLocked(to CredentialState) error {
	if !canMoveCredential(s.credential, to) {
		return &InvalidTransitionError{From: s.credential, To: to}
	}
	log.Debugf("chat %v credential: %v -> %v", s.chatID, s.credential, to)
	s.credential = to
	return nil
}
