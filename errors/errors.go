package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
	ErrAlreadyLoggedIn = fmt.Errorf("session already authenticated")
	ErrUsernameTaken   = fmt.Errorf("username already taken")
	ErrInvalidUsername = fmt.Errorf("invalid username")
)
