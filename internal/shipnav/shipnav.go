// Package shipnav implements ShipItNavigator (§4.14): the pure decision of
// where the user ends up, and whether they need a sync, immediately after a
// branch's PR has been merged.
//
// Grounded on the teacher's `av stack branch --ship`/actions.ShipItActions's
// post-merge checkout logic, which switches back to the shipped branch's
// parent (or trunk) only when the user was actually on the branch that just
// shipped.
package shipnav

// Action is one of the three post-merge outcomes.
type Action string

const (
	ActionStayed           Action = "stayed"
	ActionSwitchedToMain   Action = "switched-to-main"
	ActionSwitchedToParent Action = "switched-to-parent"
)

// Input describes the post-merge situation the navigator decides over.
type Input struct {
	ShippedBranch      string
	PrTargetBranch     string
	TrunkBranch        string
	UserCurrentBranch  string // "" means none/unknown
	WasDetached        bool
	HasChildren        bool
	IsWorkingTreeClean bool
}

// Result is the navigation decision.
type Result struct {
	Action       Action
	TargetBranch string // "" when Action is Stayed
	Message      string
	NeedsRebase  bool
}

// Navigate decides where the user should end up after shippedBranch's PR
// merges.
func Navigate(in Input) Result {
	wasOnShippedBranch := in.WasDetached || in.UserCurrentBranch == in.ShippedBranch

	if !wasOnShippedBranch && in.UserCurrentBranch != "" {
		return Result{
			Action:      ActionStayed,
			Message:     "you were not on " + in.ShippedBranch + ", staying put",
			NeedsRebase: in.HasChildren,
		}
	}

	if in.PrTargetBranch == in.TrunkBranch {
		return Result{
			Action:       ActionSwitchedToMain,
			TargetBranch: in.PrTargetBranch,
			Message:      withDirtyNote("switched to " + in.PrTargetBranch + " after shipping " + in.ShippedBranch, in),
			NeedsRebase:  in.HasChildren,
		}
	}

	return Result{
		Action:       ActionSwitchedToParent,
		TargetBranch: in.PrTargetBranch,
		Message:      withDirtyNote("switched to "+in.PrTargetBranch+" after shipping "+in.ShippedBranch, in),
		NeedsRebase:  in.HasChildren,
	}
}

func withDirtyNote(msg string, in Input) string {
	if in.HasChildren && !in.IsWorkingTreeClean {
		return msg + "; run a sync once the working tree is clean"
	}
	return msg
}
