package domain

import "errors"

var (
	// ErrEmptyBank is returned when sampling is attempted on an empty bank.
	ErrEmptyBank = errors.New("question bank is empty")
	// ErrBankUnavailable indicates the question bank could not be loaded or
	// parsed into any valid question.
	ErrBankUnavailable = errors.New("question bank unavailable")
	// ErrSessionNotFound is returned when a command addresses an unknown session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionNotCompleted is returned when a result is requested before the
	// attempt has finished.
	ErrSessionNotCompleted = errors.New("quiz session not completed")
)
