// Package change classifies the magnitude of a change between two branch
// tips. The classification rules are a pluggable, ordered table rather than
// hard-coded heuristics; callers inject alternate tables where the defaults
// do not fit.
package change

import (
	"strings"

	"github.com/example/cascade/internal/core/semver"
)

// Diff is the structured summary of a base..candidate comparison.
type Diff struct {
	// Subjects are the commit subject lines on candidate but not base.
	Subjects []string
	// Files are the paths touched between base and candidate.
	Files []string
}

// Empty reports whether the diff carries no change at all.
func (d Diff) Empty() bool {
	return len(d.Subjects) == 0 && len(d.Files) == 0
}

// Rule binds a named signal to the bump magnitude it implies.
type Rule struct {
	Name    string
	Applies func(Diff) bool
	Bump    semver.Bump
}

// RuleTable is an ordered set of classification rules. All rules are
// evaluated; when multiple signals are present the highest magnitude wins
// (major > minor > patch).
type RuleTable []Rule

// Classify returns the bump implied by the diff. A non-empty diff that
// matches no rule is a patch; an empty diff is BumpNone.
func (t RuleTable) Classify(d Diff) semver.Bump {
	if d.Empty() {
		return semver.BumpNone
	}

	highest := semver.BumpPatch
	for _, rule := range t {
		if rule.Applies(d) && rule.Bump > highest {
			highest = rule.Bump
		}
	}
	return highest
}

// DefaultRules is the standard rule table:
// breaking-change markers imply a major bump, new-capability markers a
// minor bump, anything else a patch.
func DefaultRules() RuleTable {
	return RuleTable{
		{
			Name:    "breaking-change-marker",
			Applies: hasBreakingMarker,
			Bump:    semver.BumpMajor,
		},
		{
			Name:    "new-capability-marker",
			Applies: hasFeatureMarker,
			Bump:    semver.BumpMinor,
		},
	}
}

// hasBreakingMarker matches conventional-commit breaking markers: a "!"
// before the subject colon, or a BREAKING CHANGE footer reference.
func hasBreakingMarker(d Diff) bool {
	for _, subject := range d.Subjects {
		if strings.Contains(subject, "BREAKING CHANGE") {
			return true
		}
		if idx := strings.Index(subject, ":"); idx > 0 && strings.HasSuffix(subject[:idx], "!") {
			return true
		}
	}
	return false
}

// hasFeatureMarker matches feat-typed conventional commits.
func hasFeatureMarker(d Diff) bool {
	for _, subject := range d.Subjects {
		typ, _, found := strings.Cut(subject, ":")
		if !found {
			continue
		}
		typ = strings.TrimSuffix(typ, "!")
		if idx := strings.Index(typ, "("); idx > 0 {
			typ = typ[:idx]
		}
		if strings.TrimSpace(typ) == "feat" {
			return true
		}
	}
	return false
}
