package racedomain

import "errors"

// ErrInvalidFacts marks a stage-fact submission that violates a hard
// invariant (duplicate positions, overlapping DNF/DNS, and so on).
var ErrInvalidFacts = errors.New("invalid stage facts")
