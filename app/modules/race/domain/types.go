package racedomain

import (
	"fmt"
)

// JerseyType identifies a stage-level leadership jersey.
type JerseyType string

const (
	JerseyYellow   JerseyType = "yellow"
	JerseyGreen    JerseyType = "green"
	JerseyPolkaDot JerseyType = "polka_dot"
	JerseyWhite    JerseyType = "white"
)

// AllJerseyTypes lists the four jerseys in display order.
var AllJerseyTypes = []JerseyType{JerseyYellow, JerseyGreen, JerseyPolkaDot, JerseyWhite}

// Finisher is one entry of the ordered top-K finisher list of a stage.
type Finisher struct {
	RiderID  int64  `json:"rider_id"`
	Position int    `json:"position"`
	Gap      string `json:"gap,omitempty"`
}

// StageFacts holds the raw, resolved facts of a single stage: finishers,
// jersey holders, the combativity award and the DNF/DNS sets. All rider
// references are resolved IDs; name matching happens at ingestion.
type StageFacts struct {
	StageNumber        int
	Finishers          []Finisher
	Jerseys            map[JerseyType]int64
	CombativityRiderID *int64
	DNFRiderIDs        []int64
	DNSRiderIDs        []int64
}

// DNSSet returns the DNS rider IDs as a set.
func (f *StageFacts) DNSSet() map[int64]bool {
	set := make(map[int64]bool, len(f.DNSRiderIDs))
	for _, id := range f.DNSRiderIDs {
		set[id] = true
	}
	return set
}

// Validate enforces the hard invariants of a stage-fact submission.
// Violations are ingestion errors; settlement never sees invalid facts.
func (f *StageFacts) Validate() error {
	seenPositions := make(map[int]bool, len(f.Finishers))
	seenRiders := make(map[int64]bool, len(f.Finishers))

	for _, fin := range f.Finishers {
		if fin.Position < 1 {
			return fmt.Errorf("%w: finish position %d for rider %d", ErrInvalidFacts, fin.Position, fin.RiderID)
		}
		if seenPositions[fin.Position] {
			return fmt.Errorf("%w: duplicate finish position %d", ErrInvalidFacts, fin.Position)
		}
		if seenRiders[fin.RiderID] {
			return fmt.Errorf("%w: rider %d listed twice in finishers", ErrInvalidFacts, fin.RiderID)
		}
		seenPositions[fin.Position] = true
		seenRiders[fin.RiderID] = true
	}

	dns := f.DNSSet()
	for _, id := range f.DNFRiderIDs {
		if dns[id] {
			return fmt.Errorf("%w: rider %d marked both DNF and DNS", ErrInvalidFacts, id)
		}
	}

	// A DNS rider did not ride, so it cannot finish or win anything.
	for _, fin := range f.Finishers {
		if dns[fin.RiderID] {
			return fmt.Errorf("%w: DNS rider %d appears in finishers", ErrInvalidFacts, fin.RiderID)
		}
	}
	if f.CombativityRiderID != nil && dns[*f.CombativityRiderID] {
		return fmt.Errorf("%w: DNS rider %d holds the combativity award", ErrInvalidFacts, *f.CombativityRiderID)
	}

	return nil
}

// Warnings reports data-quality gaps that do not block settlement.
// Scoring proceeds with partial facts; the gaps are surfaced to the
// submitter instead (lenient policy).
func (f *StageFacts) Warnings() []string {
	var warnings []string

	for _, jt := range AllJerseyTypes {
		if _, ok := f.Jerseys[jt]; !ok {
			warnings = append(warnings, fmt.Sprintf("no %s jersey holder submitted", jt))
		}
	}
	if len(f.Finishers) < 20 {
		warnings = append(warnings, fmt.Sprintf("only %d finishers submitted (expected 20)", len(f.Finishers)))
	}
	if f.CombativityRiderID == nil {
		warnings = append(warnings, "no combativity award submitted")
	}

	return warnings
}
