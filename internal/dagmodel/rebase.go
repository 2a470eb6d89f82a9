package dagmodel

// JobStatus is the status of one RebaseJob.
type JobStatus string

const (
	JobQueued        JobStatus = "queued"
	JobApplying      JobStatus = "applying"
	JobAwaitingUser  JobStatus = "awaiting-user"
	JobCompleted     JobStatus = "completed"
	JobFailed        JobStatus = "failed"
)

// ConflictStage is a single staged path in a merge conflict.
type ConflictStage struct {
	Path     string
	Stages   []int
	Resolved bool
}

// RebaseJob is one branch's rebase step within a RebaseState.
type RebaseJob struct {
	ID               string
	Branch           string
	OriginalBaseSha  string
	OriginalHeadSha  string
	TargetBaseSha    string
	Status           JobStatus
	Conflicts        []ConflictStage
	CreatedAtMs      int64
	UpdatedAtMs      int64
	RebasedHeadSha   string // set once Status == JobCompleted
}

// SessionStatus is the status of a RebaseState's session.
type SessionStatus string

const (
	SessionPending    SessionStatus = "pending"
	SessionRunning    SessionStatus = "running"
	SessionAwaitUser  SessionStatus = "awaiting-user"
	SessionCompleted  SessionStatus = "completed"
	SessionAborted    SessionStatus = "aborted"
)

// ShaRewrite records one (old, new) SHA pair produced by a completed rebase
// job.
type ShaRewrite struct {
	OldSha string
	NewSha string
}

// RebaseSession is the top-level, serializable session state.
type RebaseSession struct {
	ID               string
	StartedAtMs      int64
	CompletedAtMs    int64
	Status           SessionStatus
	InitialTrunkSha  string
	Jobs             []string // ordered job ids
	CommitMap        []ShaRewrite
}

// RebaseQueue tracks which job is active and which are still pending.
type RebaseQueue struct {
	ActiveJobID    string
	PendingJobIDs  []string
}

// RebaseState is the in-flight execution state for one rebase operation. It
// is treated as immutable by the core: every state-machine operation
// returns a new value.
type RebaseState struct {
	Session  RebaseSession
	JobsByID map[string]*RebaseJob
	Queue    RebaseQueue
}

// Clone returns a deep copy of the state so callers can apply the
// state-machine's pure transitions without aliasing the input.
func (s RebaseState) Clone() RebaseState {
	out := s
	out.Session.Jobs = append([]string(nil), s.Session.Jobs...)
	out.Session.CommitMap = append([]ShaRewrite(nil), s.Session.CommitMap...)
	out.JobsByID = make(map[string]*RebaseJob, len(s.JobsByID))
	for k, v := range s.JobsByID {
		jc := *v
		jc.Conflicts = append([]ConflictStage(nil), v.Conflicts...)
		out.JobsByID[k] = &jc
	}
	out.Queue.PendingJobIDs = append([]string(nil), s.Queue.PendingJobIDs...)
	return out
}

// ActiveJob returns the currently active job, if any.
func (s RebaseState) ActiveJob() (*RebaseJob, bool) {
	if s.Queue.ActiveJobID == "" {
		return nil, false
	}
	j, ok := s.JobsByID[s.Queue.ActiveJobID]
	return j, ok
}
