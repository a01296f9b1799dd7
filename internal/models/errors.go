package models

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("not allowed to modify this record")
	ErrVersionConflict = errors.New("record was modified concurrently")
	ErrEmailExists     = errors.New("email already registered")
	ErrAlreadyDeleted  = errors.New("expense already deleted")
	ErrNotDeleted      = errors.New("expense is not deleted")
	ErrAlreadyFriends  = errors.New("already friends")
)
