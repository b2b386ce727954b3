package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEventNotFound      = errors.New("event not found")
	ErrNotEventAuthor     = errors.New("not authorized to modify this event")
	ErrRegisterNotFound   = errors.New("friend register not found")
	ErrNotRegisterParty   = errors.New("not a participant of this register")
	ErrRequestNotPending  = errors.New("friend request already handled")
	ErrNotBlocked         = errors.New("register is not blocked")
	ErrSelfFriendRequest  = errors.New("cannot send a friend request to yourself")
	ErrCourseNotFound     = errors.New("course not found")
	ErrPermissionDenied   = errors.New("permission denied")
)
