package types

import "errors"

// Sentinel errors for accessctl operations.
var (
	// ErrInvalidConditions indicates a condition array failed wire-format
	// validation.
	ErrInvalidConditions = errors.New("conditions failed wire-format validation")

	// ErrPolicyNotFound indicates no policy is stored for the video.
	ErrPolicyNotFound = errors.New("no policy stored for video")

	// ErrInvalidPrice indicates a price amount is not a base-10 integer string.
	ErrInvalidPrice = errors.New("price amount is not a decimal integer")

	// ErrConditionsTooDeep indicates condition nesting exceeds MaxConditionDepth.
	ErrConditionsTooDeep = errors.New("condition nesting exceeds maximum depth")
)

// Resource limits enforced at the wire-format boundary.
const (
	// MaxConditionDepth bounds recursion when walking externally supplied
	// condition arrays. The canonical template nests four levels; 16 leaves
	// generous headroom without risking stack exhaustion on hostile input.
	MaxConditionDepth = 16
)
