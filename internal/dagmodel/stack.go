package dagmodel

// StackNodeState is one node of the rebase intent tree (§3): a branch, its
// owned commits, its base, and the children stacked on top of it.
type StackNodeState struct {
	Branch    string
	HeadSha   string
	BaseSha   string
	OwnedShas []string // ordered head -> base, excluding base
	Children  []*StackNodeState
}

// RebaseTarget pairs a StackNodeState with the SHA the user dragged it onto.
type RebaseTarget struct {
	Node          *StackNodeState
	TargetBaseSha string
}

// RebaseIntent is the user's desired rebase, shape-only, pre-confirmation.
type RebaseIntent struct {
	ID          string
	CreatedAtMs int64
	Targets     []RebaseTarget
}
