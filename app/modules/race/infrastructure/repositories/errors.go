package racedb

import "errors"

var (
	ErrStageNotFound      = errors.New("stage not found")
	ErrStageFactsNotFound = errors.New("stage facts not found")
	ErrRiderNotFound      = errors.New("rider not found")
)
