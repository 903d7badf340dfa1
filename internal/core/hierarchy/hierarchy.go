// Package hierarchy encodes the fixed branch hierarchy and its directed
// promotion edges. The hierarchy is not user-editable at runtime:
//
//	main <- develop <- contrib/* <- feature/* <- ephemeral release/*
//
// Promotion moves work up one tier at a time; the only backmerge edge runs
// from release/* to develop.
package hierarchy

import (
	"fmt"
	"strings"
)

// Protected branch names. These are mutated only through the orchestrators'
// merge step, never by direct write from any other component.
const (
	BranchMain    = "main"
	BranchDevelop = "develop"
)

// Branch name prefixes for the editable tiers.
const (
	PrefixContrib = "contrib/"
	PrefixFeature = "feature/"
	PrefixRelease = "release/"
)

// IsProtected reports whether a branch may only be written via a
// promotion or backmerge merge.
func IsProtected(branch string) bool {
	return branch == BranchMain || branch == BranchDevelop
}

// Edge is one directed promotion step in the hierarchy.
type Edge int

const (
	// EdgeFeatureToContrib promotes a feature branch into its contrib parent.
	EdgeFeatureToContrib Edge = iota
	// EdgeContribToDevelop promotes a contrib branch into develop.
	EdgeContribToDevelop
	// EdgeDevelopToMain promotes develop into main.
	EdgeDevelopToMain
)

// String returns the canonical edge notation, e.g. "feature->contrib".
func (e Edge) String() string {
	switch e {
	case EdgeFeatureToContrib:
		return "feature->contrib"
	case EdgeContribToDevelop:
		return "contrib->develop"
	case EdgeDevelopToMain:
		return "develop->main"
	default:
		return fmt.Sprintf("edge(%d)", int(e))
	}
}

// ParseEdge accepts "feature->contrib" or "feature:contrib" notation.
func ParseEdge(s string) (Edge, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ":", "->")
	switch normalized {
	case "feature->contrib":
		return EdgeFeatureToContrib, nil
	case "contrib->develop":
		return EdgeContribToDevelop, nil
	case "develop->main":
		return EdgeDevelopToMain, nil
	default:
		return 0, fmt.Errorf("unknown promotion edge %q (want feature->contrib, contrib->develop, or develop->main)", s)
	}
}

// Predecessor returns the edge that must have completed before this one,
// or false for the first edge in the hierarchy.
func (e Edge) Predecessor() (Edge, bool) {
	switch e {
	case EdgeContribToDevelop:
		return EdgeFeatureToContrib, true
	case EdgeDevelopToMain:
		return EdgeContribToDevelop, true
	default:
		return 0, false
	}
}

// SourceMatches reports whether a branch name belongs to the edge's source
// tier.
func (e Edge) SourceMatches(branch string) bool {
	switch e {
	case EdgeFeatureToContrib:
		return strings.HasPrefix(branch, PrefixFeature)
	case EdgeContribToDevelop:
		return strings.HasPrefix(branch, PrefixContrib)
	case EdgeDevelopToMain:
		return branch == BranchDevelop
	default:
		return false
	}
}

// Target resolves the edge's target branch. The feature tier merges into
// the contrib branch the feature was cut from, so that edge needs the
// source's base branch; the upper edges have fixed targets.
func (e Edge) Target(baseBranch string) (string, error) {
	switch e {
	case EdgeFeatureToContrib:
		if !strings.HasPrefix(baseBranch, PrefixContrib) {
			return "", fmt.Errorf("feature promotion target %q is not a contrib branch", baseBranch)
		}
		return baseBranch, nil
	case EdgeContribToDevelop:
		return BranchDevelop, nil
	case EdgeDevelopToMain:
		return BranchMain, nil
	default:
		return "", fmt.Errorf("unknown edge %d", int(e))
	}
}
