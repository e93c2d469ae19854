package model

import "errors"

// Common errors used across the application
var (
	// Entry errors
	ErrInvalidName  = errors.New("display name must not be empty")
	ErrInvalidBoard = errors.New("board must have exactly 100 cells")

	// Room errors
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is already full")
	ErrSessionNotFound = errors.New("session not found")
	ErrRoomCodeTaken   = errors.New("room code already in use")

	// Challenge errors
	ErrPlayerOffline = errors.New("player is offline")
)
