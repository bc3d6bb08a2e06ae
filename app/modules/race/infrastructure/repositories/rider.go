package racedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// RiderRepositoryImpl handles database operations for riders.
type RiderRepositoryImpl struct{}

// NewRiderRepository creates a new rider repository.
func NewRiderRepository() RiderRepository {
	return &RiderRepositoryImpl{}
}

// UpsertStartlist inserts or refreshes the full startlist. Existing riders
// are matched by name; team, number and country are updated in place so a
// re-imported startlist never duplicates riders mid-race.
func (r *RiderRepositoryImpl) UpsertStartlist(ctx context.Context, db bun.IDB, riders []*Rider) (int, error) {
	if len(riders) == 0 {
		return 0, nil
	}

	res, err := db.NewInsert().
		Model(&riders).
		On("CONFLICT (name) DO UPDATE").
		Set("team = EXCLUDED.team").
		Set("number = EXCLUDED.number").
		Set("country = EXCLUDED.country").
		Set("is_active = EXCLUDED.is_active").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert startlist: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return len(riders), nil
	}
	return int(affected), nil
}

func (r *RiderRepositoryImpl) GetByID(ctx context.Context, db bun.IDB, id int64) (*Rider, error) {
	rider := new(Rider)
	err := db.NewSelect().Model(rider).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRiderNotFound
		}
		return nil, fmt.Errorf("failed to get rider %d: %w", id, err)
	}
	return rider, nil
}

func (r *RiderRepositoryImpl) GetByIDs(ctx context.Context, db bun.IDB, ids []int64) (map[int64]*Rider, error) {
	if len(ids) == 0 {
		return map[int64]*Rider{}, nil
	}

	var riders []*Rider
	err := db.NewSelect().Model(&riders).Where("id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get riders: %w", err)
	}

	byID := make(map[int64]*Rider, len(riders))
	for _, rider := range riders {
		byID[rider.ID] = rider
	}
	return byID, nil
}

func (r *RiderRepositoryImpl) ListActive(ctx context.Context, db bun.IDB) ([]*Rider, error) {
	var riders []*Rider
	err := db.NewSelect().
		Model(&riders).
		Where("is_active = ?", true).
		Order("number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active riders: %w", err)
	}
	return riders, nil
}

// ResolveNames maps submitted rider names to rider IDs. Matching is exact
// but case-insensitive; unmatched names are returned so ingestion can
// reject the submission with a useful message.
func (r *RiderRepositoryImpl) ResolveNames(ctx context.Context, db bun.IDB, names []string) (map[string]int64, []string, error) {
	if len(names) == 0 {
		return map[string]int64{}, nil, nil
	}

	lowered := make([]string, len(names))
	for i, name := range names {
		lowered[i] = strings.ToLower(name)
	}

	var riders []*Rider
	err := db.NewSelect().
		Model(&riders).
		Where("LOWER(name) IN (?)", bun.In(lowered)).
		Scan(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve rider names: %w", err)
	}

	byName := make(map[string]int64, len(riders))
	for _, rider := range riders {
		byName[strings.ToLower(rider.Name)] = rider.ID
	}

	resolved := make(map[string]int64, len(names))
	var missing []string
	for _, name := range names {
		if id, ok := byName[strings.ToLower(name)]; ok {
			resolved[name] = id
		} else {
			missing = append(missing, name)
		}
	}

	return resolved, missing, nil
}
