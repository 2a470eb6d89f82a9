package shipnav_test

import (
	"testing"

	"github.com/aviator-co/stackcore/internal/shipnav"
	"github.com/stretchr/testify/require"
)

func TestNavigate_SwitchedToParent(t *testing.T) {
	// S6 from the spec's seed scenarios.
	result := shipnav.Navigate(shipnav.Input{
		ShippedBranch:      "feature-2",
		PrTargetBranch:     "feature-1",
		TrunkBranch:        "main",
		UserCurrentBranch:  "feature-2",
		WasDetached:        false,
		HasChildren:        false,
		IsWorkingTreeClean: true,
	})
	require.Equal(t, shipnav.ActionSwitchedToParent, result.Action)
	require.Equal(t, "feature-1", result.TargetBranch)
	require.False(t, result.NeedsRebase)
}

func TestNavigate_SwitchedToMain(t *testing.T) {
	result := shipnav.Navigate(shipnav.Input{
		ShippedBranch:     "feature",
		PrTargetBranch:    "main",
		TrunkBranch:       "main",
		UserCurrentBranch: "feature",
		HasChildren:       true,
	})
	require.Equal(t, shipnav.ActionSwitchedToMain, result.Action)
	require.Equal(t, "main", result.TargetBranch)
	require.True(t, result.NeedsRebase)
}

func TestNavigate_StayedWhenOnOtherBranch(t *testing.T) {
	result := shipnav.Navigate(shipnav.Input{
		ShippedBranch:     "feature",
		PrTargetBranch:    "main",
		TrunkBranch:       "main",
		UserCurrentBranch: "unrelated",
		HasChildren:       true,
	})
	require.Equal(t, shipnav.ActionStayed, result.Action)
	require.Empty(t, result.TargetBranch)
	require.True(t, result.NeedsRebase)
}

func TestNavigate_DetachedCountsAsOnShippedBranch(t *testing.T) {
	result := shipnav.Navigate(shipnav.Input{
		ShippedBranch:     "feature",
		PrTargetBranch:    "main",
		TrunkBranch:       "main",
		UserCurrentBranch: "",
		WasDetached:       true,
	})
	require.Equal(t, shipnav.ActionSwitchedToMain, result.Action)
}

func TestNavigate_UnknownCurrentBranchFallsThroughToSwitch(t *testing.T) {
	// userCurrentBranch == "" (none/unknown) and not detached: the "stayed"
	// branch requires userCurrentBranch != none, so this case falls through.
	result := shipnav.Navigate(shipnav.Input{
		ShippedBranch:  "feature",
		PrTargetBranch: "parent",
		TrunkBranch:    "main",
	})
	require.Equal(t, shipnav.ActionSwitchedToParent, result.Action)
}
