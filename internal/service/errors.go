package service

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrEmptyQuery        = errors.New("search query is empty")
	ErrInvalidHSKLevel   = errors.New("HSK level must be between 1 and 6")
	ErrCharacterNotFound = errors.New("character not found")
)
