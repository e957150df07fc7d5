package game

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternal            = errors.New("internal error")
)
