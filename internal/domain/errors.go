package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgNotOwned               = "cosmetic not owned"
	ErrMsgEmptyRewardTable       = "reward table is empty"
	ErrMsgPersistenceUnavailable = "persistence unavailable"
	ErrMsgNotFound               = "not found"
	ErrMsgAccessDenied           = "access denied"
	ErrMsgInvalidInput           = "invalid input"
)

// Common domain errors
// These errors are used consistently across all layers of the engine.
// Wrap them with fmt.Errorf("%w: %s", domain.ErrXxx, details) for
// additional context and branch on them with errors.Is.
var (
	ErrNotOwned               = errors.New(ErrMsgNotOwned)
	ErrEmptyRewardTable       = errors.New(ErrMsgEmptyRewardTable)
	ErrPersistenceUnavailable = errors.New(ErrMsgPersistenceUnavailable)
	ErrNotFound               = errors.New(ErrMsgNotFound)
	ErrAccessDenied           = errors.New(ErrMsgAccessDenied)
	ErrInvalidInput           = errors.New(ErrMsgInvalidInput)
)
