package models

import "errors"

// Core error taxonomy. Services return these (possibly wrapped with %w);
// handlers map them to HTTP statuses.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("record not found")
	ErrNotAParticipant    = errors.New("actor is not a participant of this challenge")
	ErrDuplicateChallenge = errors.New("a pending challenge already exists for this pair")
	ErrChallengeClosed    = errors.New("challenge already completed")
	ErrAlreadyClaimed     = errors.New("reward already claimed")
	ErrNotEligible        = errors.New("not eligible to claim this reward")
	ErrClock              = errors.New("no trusted calendar day available")
	ErrStorageConflict    = errors.New("storage write conflict")
)
