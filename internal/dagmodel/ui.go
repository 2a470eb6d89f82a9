package dagmodel

// RebaseStatus annotates a UiCommit with its role in a rebase preview
// (§4.10): "prompting" for a commit that will move, "idle" for a descendant
// that isn't moving yet, and "" when there is no active rebase preview.
type RebaseStatus string

const (
	RebaseStatusNone      RebaseStatus = ""
	RebaseStatusPrompting RebaseStatus = "prompting"
	RebaseStatusIdle      RebaseStatus = "idle"
)

// UiBranch is a branch annotation attached to the UiCommit at its head.
type UiBranch struct {
	Name     string
	IsCurrent bool
	IsRemote bool
	IsTrunk  bool

	CanRename         bool
	CanRenameReason   string
	CanDelete         bool
	CanDeleteReason   string
	CanSquash         bool
	CanSquashReason   string
	CanCreateWorktree bool
	CanCreateWorktreeReason string
	CanRecreatePr     bool
	ExpectedPrBase    string

	OwnedCommitShas []string

	PullRequest  *ForgePullRequest
	IsMerged     bool
	HasStaleTarget bool

	Worktree *Worktree
}

// UiCommit is one commit in a projected stack tree. Commit nodes are shared
// by reference: the same *UiCommit appears once in a stack's Commits slice
// and is referenced from whatever else annotates it (never copied).
type UiCommit struct {
	Sha           string
	Name          string
	TimestampMs   int64
	IsCurrent     bool
	IsIndependent bool
	RebaseStatus  RebaseStatus
	Spinoffs      []*UiStack
	Branches      []*UiBranch
}

// UiStack is a linear chain of commits owned by one branch (or the trunk).
type UiStack struct {
	Commits            []*UiCommit
	IsTrunk            bool
	CanRebaseToTrunk   bool
	IsDirectlyOffTrunk bool
}

// ForgePullRequest is the subset of pull-request data the core's ForgeJoin
// (§4.13) and ShipItNavigator (§4.14) consume. It is filled in by the
// external forge client and treated as read-only.
type ForgePullRequest struct {
	Number      int64
	HeadRefName string
	BaseRefName string
	State       PrState
	Mergeable   bool
	CreatedAtMs int64 // 0 / unparsable treated as "oldest" by findBestPr
}

// PrState enumerates the forge pull-request states the core reasons about.
type PrState string

const (
	PrOpen   PrState = "open"
	PrDraft  PrState = "draft"
	PrMerged PrState = "merged"
	PrClosed PrState = "closed"
)

// GitForgeState is the read-only snapshot the forge client hands to the
// core (§6): pull requests plus the set of branch names known to have been
// merged.
type GitForgeState struct {
	PullRequests      []*ForgePullRequest
	MergedBranchNames map[string]bool
}

// FullUiState is the aggregate output a UI consumes (§6).
type FullUiState struct {
	Stack          []*UiStack
	ProjectedStack []*UiStack
	WorkingTree    WorkingTreeStatus
	Rebase         *RebaseState
}
