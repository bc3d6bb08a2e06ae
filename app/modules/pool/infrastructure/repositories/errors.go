package pooldb

import "errors"

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrDirectieNotFound    = errors.New("directie not found")
)
