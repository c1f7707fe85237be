package login

import "fmt"

// State is a step of a single login attempt. Steps run strictly in order.
type State int

const (
	StateLaunching State = iota
	StateNavigating
	StateTriggeringAuth
	StateFillingUsername
	StateFillingPassword
	StateSubmitting
	StateClassifyingResult
	StateEnriching
	StateClosed
)

var stateNames = [...]string{
	StateLaunching:         "launching browser",
	StateNavigating:        "navigating",
	StateTriggeringAuth:    "opening login form",
	StateFillingUsername:   "filling username",
	StateFillingPassword:   "filling password",
	StateSubmitting:        "submitting",
	StateClassifyingResult: "classifying result",
	StateEnriching:         "enriching",
	StateClosed:            "closed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StepError records which step of the login sequence failed.
type StepError struct {
	Step State
	Err  error
}

func (e *StepError) Error() string {
	return e.Step.String() + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error { return e.Err }
