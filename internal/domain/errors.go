package domain

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomAlreadyExists   = errors.New("room already exists")
	ErrRoomFull            = errors.New("room is full")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrInvalidState        = errors.New("action not permitted in current room phase")
	ErrInsufficientPlayers = errors.New("at least two players are required to start")
	ErrEmptyQuestionPool   = errors.New("question pool is empty")
	ErrMalformedAction     = errors.New("malformed action")
)
