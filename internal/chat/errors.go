package chat

import "errors"

// Error kinds returned by the directory, the message log and the service.
// Operations wrap them with context; match with errors.Is.
var (
	ErrNotFound        = errors.New("chat: not found")
	ErrUnauthorized    = errors.New("chat: not a member of this room")
	ErrForbidden       = errors.New("chat: not allowed")
	ErrConflict        = errors.New("chat: conflict")
	ErrInvalidArgument = errors.New("chat: invalid argument")
)
