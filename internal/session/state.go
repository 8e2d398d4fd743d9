package session

import "fmt"

type CredentialState string

const (
	CredentialUnknown    CredentialState = "unknown"
	CredentialActivating CredentialState = "activating"
	CredentialActive     CredentialState = "active"
	CredentialDenied     CredentialState = "denied"
)

var credentialTransitions = map[CredentialState][]CredentialState{
	CredentialUnknown:    {CredentialActive, CredentialDenied, CredentialActivating},
	CredentialActivating: {CredentialActive, CredentialDenied},
	CredentialActive:     {CredentialDenied},
	CredentialDenied:     {CredentialActive, CredentialActivating},
}

func canMoveCredential(from, to CredentialState) bool {
	for _, allowed := range credentialTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type InvalidTransitionError struct {
	From CredentialState
	To   CredentialState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("credential cannot move from %v to %v", e.From, e.To)
}

type View string

const (
	ViewProfileEntry View = "profile_entry"
	ViewLoading      View = "loading"
	ViewResults      View = "results"
	ViewError        View = "error"
)

// SubView only means something while the view is ViewResults.
type SubView string

const (
	SubViewSelection  SubView = "selection"
	SubViewJobs       SubView = "jobs"
	SubViewInvestment SubView = "investment"
)

type JobsMode string

const (
	JobsProfile JobsMode = "profile"
	JobsMap     JobsMode = "map"
)
