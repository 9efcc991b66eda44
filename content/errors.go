package content

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no document, global or redirect matched. It is an
	// expected outcome, never a server failure.
	ErrNotFound = errors.New("content: not found")

	// ErrStoreSkipped is returned instead of querying the store while the site is
	// in the build short-circuit phase.
	ErrStoreSkipped = errors.New("content: store access skipped during build")

	// ErrContractViolation matches every *ContractViolation.
	ErrContractViolation = errors.New("content: store contract violation")

	// ErrUnknownField is returned by adapters for filter, sort or select fields
	// they cannot map.
	ErrUnknownField = errors.New("content: unknown field")
)

// ContractViolation reports that the store returned several published
// documents for a filter that must match at most one.
type ContractViolation struct {
	Collection Collection
	Slug       string
	Matches    int
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("content: %d published %s share slug %q", e.Matches, e.Collection, e.Slug)
}

// Is makes errors.Is(err, ErrContractViolation) match.
func (e *ContractViolation) Is(target error) bool {
	return target == ErrContractViolation
}
