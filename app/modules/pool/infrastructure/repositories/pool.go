package pooldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// PoolRepositoryImpl handles database operations for participants and directies.
type PoolRepositoryImpl struct{}

// NewPoolRepository creates a new pool repository.
func NewPoolRepository() PoolRepository {
	return &PoolRepositoryImpl{}
}

func (r *PoolRepositoryImpl) CreateDirectie(ctx context.Context, db bun.IDB, directie *Directie) error {
	_, err := db.NewInsert().
		Model(directie).
		On("CONFLICT (name) DO UPDATE").
		Set("name = EXCLUDED.name").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create directie %q: %w", directie.Name, err)
	}
	return nil
}

func (r *PoolRepositoryImpl) ListDirecties(ctx context.Context, db bun.IDB) ([]*Directie, error) {
	var directies []*Directie
	err := db.NewSelect().Model(&directies).Order("name ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list directies: %w", err)
	}
	return directies, nil
}

func (r *PoolRepositoryImpl) CreateParticipant(ctx context.Context, db bun.IDB, participant *Participant) error {
	_, err := db.NewInsert().
		Model(participant).
		On("CONFLICT (name) DO UPDATE").
		Set("directie_id = EXCLUDED.directie_id").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create participant %q: %w", participant.Name, err)
	}
	return nil
}

func (r *PoolRepositoryImpl) GetParticipant(ctx context.Context, db bun.IDB, id int64) (*Participant, error) {
	participant := new(Participant)
	err := db.NewSelect().Model(participant).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant %d: %w", id, err)
	}
	return participant, nil
}

func (r *PoolRepositoryImpl) ListParticipants(ctx context.Context, db bun.IDB) ([]*Participant, error) {
	var participants []*Participant
	err := db.NewSelect().Model(&participants).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}
