package scoringservice

import "errors"

var (
	// ErrOutOfOrderSettlement rejects settling stage N while an earlier
	// stage is still incomplete; cumulative totals would be undefined.
	ErrOutOfOrderSettlement = errors.New("cannot settle stage out of order")
)
