package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidInput    = errors.New("invalid input")
	ErrModelNotReady   = errors.New("model has no trained artifact")
	ErrAlreadyTerminal = errors.New("job already in terminal state")
	ErrDispatchFailed  = errors.New("provider dispatch failed")
)
