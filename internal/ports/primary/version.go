package primary

import (
	"context"

	"github.com/example/cascade/internal/core/semver"
)

// VersionService is the primary port for the version calculator.
type VersionService interface {
	// Current returns the highest version ever released, or 0.0.0.
	Current(ctx context.Context) (semver.Version, error)

	// ComputeNext classifies the diff between base and candidate and
	// returns the next version. It never returns a version less than or
	// equal to the current one; a no-op diff yields ErrNoChange.
	ComputeNext(ctx context.Context, base, candidate string) (semver.Version, error)
}
