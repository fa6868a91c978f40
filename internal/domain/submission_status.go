package domain

type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "IDLE"
	SubmissionValidating SubmissionState = "VALIDATING"
	SubmissionSending    SubmissionState = "SENDING"
)

var allowedTransitions = map[SubmissionState][]SubmissionState{
	SubmissionIdle:       {SubmissionValidating},
	SubmissionValidating: {SubmissionIdle, SubmissionSending},
	SubmissionSending:    {SubmissionIdle},
}

// CanTransitionTo reports whether the guard may move from s to next.
func CanTransitionTo(s, next SubmissionState) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s SubmissionState) String() string {
	return string(s)
}
