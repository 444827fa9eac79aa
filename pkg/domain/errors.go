package domain

import "errors"

// ErrKeyNotFound is returned by key-value stores when a key has no value.
var ErrKeyNotFound = errors.New("key not found")

// ErrSessionNotFound is returned when a calculator session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidDigit is returned when a digit intent carries anything other than 0-9 or '.'.
var ErrInvalidDigit = errors.New("invalid digit")

// ErrInvalidOperator is returned for an unknown operator code.
var ErrInvalidOperator = errors.New("invalid operator")

// ErrInvalidIntent is returned when an intent kind is unknown or malformed.
var ErrInvalidIntent = errors.New("invalid intent")

// ErrHistoryIndex is returned when a history position is out of range.
var ErrHistoryIndex = errors.New("history index out of range")
