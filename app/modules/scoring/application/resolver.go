package scoringservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	pooldb "github.com/wielervrienden/tourpoule-bot/app/modules/pool/infrastructure/repositories"
	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
)

// resolveActiveRosters determines every participant's active roster for the
// stage, applying the one-time backup substitution for DNS main riders.
//
// The backup is a single-use reserve for the whole race: once consumed it
// never refreshes. Consumption attributed to this very stage is reset
// first, so forced re-settlement re-derives the same state.
func (s *SettlementService) resolveActiveRosters(
	ctx context.Context,
	db bun.IDB,
	stageNumber int,
	dns map[int64]bool,
) ([]*scoringdb.ActiveRosterEntry, []*scoringdb.SubstitutionEvent, error) {
	if err := s.rosters.ResetBackupUsage(ctx, db, stageNumber); err != nil {
		return nil, nil, err
	}

	rosters, err := s.rosters.ListAllRosters(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	participantIDs := make([]int64, 0, len(rosters))
	for participantID := range rosters {
		participantIDs = append(participantIDs, participantID)
	}
	slices.Sort(participantIDs)

	var entries []*scoringdb.ActiveRosterEntry
	var events []*scoringdb.SubstitutionEvent

	for _, participantID := range participantIDs {
		selections := rosters[participantID]
		var backup *pooldb.RosterSelection
		mainRiderIDs := make(map[int64]bool)

		for _, sel := range selections {
			if sel.IsBackup {
				backup = sel
			} else {
				mainRiderIDs[sel.RiderID] = true
			}
		}

		// The backup can be promoted at most once per race: it must exist,
		// not have been consumed in an earlier stage, not itself be DNS,
		// and not already occupy a main slot of this same roster.
		backupAvailable := backup != nil &&
			(backup.BackupUsedStage == nil || *backup.BackupUsedStage >= stageNumber) &&
			!dns[backup.RiderID] &&
			!mainRiderIDs[backup.RiderID]

		for _, sel := range selections {
			if sel.IsBackup {
				continue
			}

			if !dns[sel.RiderID] {
				entries = append(entries, &scoringdb.ActiveRosterEntry{
					StageNumber:   stageNumber,
					ParticipantID: participantID,
					RiderID:       sel.RiderID,
					Slot:          sel.Slot,
				})
				continue
			}

			if backupAvailable {
				// Promote the backup into the vacated main slot.
				entries = append(entries, &scoringdb.ActiveRosterEntry{
					StageNumber:     stageNumber,
					ParticipantID:   participantID,
					RiderID:         backup.RiderID,
					Slot:            sel.Slot,
					ViaSubstitution: true,
				})
				events = append(events, &scoringdb.SubstitutionEvent{
					ID:            uuid.NewString(),
					StageNumber:   stageNumber,
					ParticipantID: participantID,
					RiderOutID:    sel.RiderID,
					RiderInID:     backup.RiderID,
				})
				if err := s.rosters.MarkBackupUsed(ctx, db, participantID, stageNumber, sel.RiderID); err != nil {
					return nil, nil, err
				}
				backupAvailable = false
				continue
			}

			// No usable backup: the participant rides this stage one short.
			s.logger.Debug("DNS rider dropped without replacement",
				slog.Int64("participant", participantID),
				slog.Int64("rider", sel.RiderID),
				slog.Int("stage", stageNumber),
			)
		}
	}

	if err := s.repo.ReplaceActiveRoster(ctx, db, stageNumber, entries); err != nil {
		return nil, nil, fmt.Errorf("failed to persist active rosters: %w", err)
	}
	if err := s.repo.ReplaceSubstitutions(ctx, db, stageNumber, events); err != nil {
		return nil, nil, fmt.Errorf("failed to persist substitutions: %w", err)
	}

	return entries, events, nil
}
