package validate

import (
	"github.com/aviator-co/stackcore/internal/dagmodel"
	"github.com/aviator-co/stackcore/internal/forgejoin"
)

// Ship-it codes. Not part of §6's validator/squash enumerations (those
// cover rebase and squash only); scoped to this validator.
const (
	ShipNoOpenPr    = "NO_OPEN_PR"
	ShipNotMergeable = "NOT_MERGEABLE"
	ShipCannotShip  = "CANNOT_SHIP"
)

// ValidateShipIt is the pre-merge ShipItValidator (§4.12): branch may only
// be shipped if it has a mergeable open PR, that PR's base is not a merged
// non-trunk branch, and (when supplied) the frontend's own branchCanShip
// computation agrees.
func ValidateShipIt(
	branch string,
	prs []*dagmodel.ForgePullRequest,
	mergedBranchNames map[string]bool,
	trunkRef string,
	branchCanShip *bool,
) Result {
	pr := forgejoin.FindOpenPr(branch, prs)
	if pr == nil {
		return fail(ShipNoOpenPr, "no open pull request for "+branch)
	}
	if !pr.Mergeable {
		return fail(ShipNotMergeable, "pull request for "+branch+" is not mergeable")
	}
	if pr.BaseRefName != trunkRef && mergedBranchNames[pr.BaseRefName] {
		return fail(ShipCannotShip, "base branch "+pr.BaseRefName+" has already been merged")
	}
	if branchCanShip != nil && !*branchCanShip {
		if pr.BaseRefName != trunkRef {
			return fail(ShipCannotShip, branch+" is stacked on "+pr.BaseRefName)
		}
		return fail(ShipCannotShip, branch+" is stacked on another branch")
	}
	return ok()
}
