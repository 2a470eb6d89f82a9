// Package phasemachine implements the explicit, user-visible phase state
// machine layered over RebaseStateMachine (§4.9): idle → planning → queued
// → executing → conflicted/finalizing → completed, plus an error phase
// reachable from any in-flight phase.
//
// Grounded on the teacher's sequencerui.Model (a bubbletea state machine
// driving the same idle/running/conflict/done shape for the interactive
// rebase TUI), re-expressed as a pure transition table so a UI can drive it
// without embedding bubbletea.
package phasemachine

import "fmt"

// Phase is one of the eight user-visible rebase phases.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePlanning   Phase = "planning"
	PhaseQueued     Phase = "queued"
	PhaseExecuting  Phase = "executing"
	PhaseConflicted Phase = "conflicted"
	PhaseFinalizing Phase = "finalizing"
	PhaseCompleted  Phase = "completed"
	PhaseError      Phase = "error"
)

// Event is a trigger the orchestrator feeds into Transition.
type Event string

const (
	EventSubmitIntent         Event = "SUBMIT_INTENT"
	EventCancelIntent         Event = "CANCEL_INTENT"
	EventConfirmIntent        Event = "CONFIRM_INTENT"
	EventJobStarted           Event = "JOB_STARTED"
	EventAbort                Event = "ABORT"
	EventJobCompleted         Event = "JOB_COMPLETED"
	EventConflictDetected     Event = "CONFLICT_DETECTED"
	EventAllJobsComplete      Event = "ALL_JOBS_COMPLETE"
	EventContinueAfterResolve Event = "CONTINUE_AFTER_RESOLVE"
	EventFinalizeComplete     Event = "FINALIZE_COMPLETE"
	EventClearCompleted       Event = "CLEAR_COMPLETED"
	EventError                Event = "ERROR"
	EventAcknowledgeError     Event = "ACKNOWLEDGE_ERROR"
)

// ErrorInfo is recorded by the error phase.
type ErrorInfo struct {
	Code        string
	Message     string
	Recoverable bool
}

// Actions lists the recovery actions a UI offers for this error.
func (e ErrorInfo) Actions() []string {
	if e.Recoverable {
		return []string{"retry", "abort"}
	}
	return []string{"cleanup"}
}

// State is the phase machine's current value.
type State struct {
	Phase         Phase
	EnteredAtMs   int64
	CorrelationID string
	Error         *ErrorInfo
}

// InvalidTransitionError is returned for any event not allowed from the
// current phase.
type InvalidTransitionError struct {
	FromPhase Phase
	EventType Event
	Reason    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: event %q not allowed from phase %q: %s", e.EventType, e.FromPhase, e.Reason)
}

var transitions = map[Phase]map[Event]Phase{
	PhaseIdle:     {EventSubmitIntent: PhasePlanning},
	PhasePlanning: {EventCancelIntent: PhaseIdle, EventConfirmIntent: PhaseQueued},
	PhaseQueued:   {EventJobStarted: PhaseExecuting, EventAbort: PhaseIdle},
	PhaseExecuting: {
		EventJobCompleted:    PhaseExecuting,
		EventConflictDetected: PhaseConflicted,
		EventAllJobsComplete: PhaseFinalizing,
		EventAbort:           PhaseIdle,
	},
	PhaseConflicted: {EventContinueAfterResolve: PhaseExecuting, EventAbort: PhaseIdle},
	PhaseFinalizing: {EventFinalizeComplete: PhaseCompleted},
	PhaseCompleted:  {EventClearCompleted: PhaseIdle},
	PhaseError:      {EventAcknowledgeError: PhaseIdle},
}

var errorEligible = map[Phase]bool{
	PhaseQueued:     true,
	PhaseExecuting:  true,
	PhaseConflicted: true,
	PhaseFinalizing: true,
}

// Transition applies event to state, returning the new state or an
// *InvalidTransitionError. generateCorrelationID is called only on
// CLEAR_COMPLETED, which starts a fresh correlation id for the next
// session; every other transition preserves the existing one. errInfo is
// only consulted (and must be non-nil) when event is ERROR.
func Transition(
	state State,
	event Event,
	nowMs int64,
	generateCorrelationID func() string,
	errInfo *ErrorInfo,
) (State, error) {
	if event == EventError {
		if !errorEligible[state.Phase] {
			return state, &InvalidTransitionError{
				FromPhase: state.Phase,
				EventType: event,
				Reason:    "ERROR is only valid from queued, executing, conflicted, or finalizing",
			}
		}
		return State{
			Phase:         PhaseError,
			EnteredAtMs:   nowMs,
			CorrelationID: state.CorrelationID,
			Error:         errInfo,
		}, nil
	}

	next, ok := transitions[state.Phase][event]
	if !ok {
		return state, &InvalidTransitionError{
			FromPhase: state.Phase,
			EventType: event,
			Reason:    "no transition defined for this phase/event pair",
		}
	}

	correlationID := state.CorrelationID
	if event == EventClearCompleted {
		correlationID = generateCorrelationID()
	}

	return State{Phase: next, EnteredAtMs: nowMs, CorrelationID: correlationID}, nil
}

// ProjectionKind is which of the two §4.9 projections (if either) a UI
// should render for the current phase.
type ProjectionKind string

const (
	ProjectionNone     ProjectionKind = "none"
	ProjectionPlanning ProjectionKind = "planning"
	ProjectionRebasing ProjectionKind = "rebasing"
	ProjectionIdle     ProjectionKind = "idle"
)

// DeriveProjectionKind decides which projection applies to state. hasIntent
// reports whether a RebaseIntent currently exists (only meaningful while
// planning).
func DeriveProjectionKind(state State, hasIntent bool) ProjectionKind {
	switch state.Phase {
	case PhasePlanning:
		if hasIntent {
			return ProjectionPlanning
		}
		return ProjectionNone
	case PhaseExecuting, PhaseConflicted:
		return ProjectionRebasing
	case PhaseCompleted:
		return ProjectionIdle
	default:
		return ProjectionNone
	}
}
