package service

import (
	"errors"
	"fmt"
)

const (
	MessageSignUpConfirm    = "Check your email for the confirmation link."
	MessageUnexpectedAuth   = "An unexpected error occurred. Please try again."
	MessageStoreUnavailable = "We couldn't reach your chat history. Please try again."
)

var (
	ErrEmptyMessage    = errors.New("message cannot be empty")
	ErrNoActiveSession = errors.New("no active chat session, start a new chat first")
	ErrSendInProgress  = errors.New("a message is already being sent")
	ErrSessionNotFound = errors.New("chat session not found")
	ErrUnauthenticated = errors.New("not signed in")
)

// AuthError is an identity failure. Message is the text shown on the credential form.
type AuthError struct {
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failed session store call. The workspace banner is set
// by the time the caller sees it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
