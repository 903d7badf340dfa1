// Package worktree contains the pure business logic for worktree naming
// and lifecycle preconditions. Paths and IDs are deterministic so a
// worktree is independently addressable across process restarts.
package worktree

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Kind classifies the lifecycle a worktree belongs to.
type Kind string

const (
	// KindFeature is a feature lifecycle worktree.
	KindFeature Kind = "feature"
	// KindContrib is a contribution-branch worktree.
	KindContrib Kind = "contrib"
	// KindRelease is an ephemeral release worktree.
	KindRelease Kind = "release"
)

// ValidKind reports whether k is a known worktree kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindFeature, KindContrib, KindRelease:
		return true
	default:
		return false
	}
}

// maxSlugLen bounds slug length so derived paths stay manageable.
const maxSlugLen = 40

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9.-]`)
var slugHyphenRuns = regexp.MustCompile(`-+`)

// SanitizeSlug creates a filesystem- and branch-name safe slug.
// Dots are kept so release worktrees can carry version slugs like "1.4.0".
func SanitizeSlug(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugHyphenRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-.")

	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
		slug = strings.Trim(slug, "-.")
	}
	return slug
}

// ValidSlug reports whether s is already a safe slug.
func ValidSlug(s string) bool {
	return s != "" && s == SanitizeSlug(s)
}

// BranchName derives the branch a worktree is bound to: {kind}/{slug}.
func BranchName(kind Kind, slug string) string {
	return fmt.Sprintf("%s/%s", kind, slug)
}

// DerivePath returns the deterministic checkout path for a worktree:
// a sibling directory of the repository root named {root}_{kind}_{slug}.
// No two live worktrees may resolve to the same path.
func DerivePath(repoRoot string, kind Kind, slug string) string {
	return fmt.Sprintf("%s_%s_%s", strings.TrimRight(repoRoot, "/"), kind, slug)
}

// DeriveID returns the stable worktree ID for a checkout path. The ID is
// derived from the path alone so it survives process restarts.
func DeriveID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return "wt-" + hex.EncodeToString(sum[:])[:12]
}
