package session

import "errors"

var (
	// ErrInvalidIndex is returned when a round index is outside [0,15].
	ErrInvalidIndex = errors.New("round index out of range")
	// ErrMalformedState marks a persisted record that could not be decoded.
	// The record is replaced by a fresh value; the error is a warning.
	ErrMalformedState = errors.New("malformed persisted state")
	// ErrPersistence wraps store failures. In-memory state stays authoritative.
	ErrPersistence = errors.New("persistence failure")
	// ErrHistoryUnavailable is returned by CloseSession while the stored
	// history cannot be read. Nothing is changed.
	ErrHistoryUnavailable = errors.New("history could not be read")

	ErrEmptyName       = errors.New("player name is empty")
	ErrDuplicatePlayer = errors.New("player already exists")
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrUnknownSeat     = errors.New("unknown seat")
)
