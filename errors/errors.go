package errors

import "fmt"

var (
	ErrUnauthenticated = fmt.Errorf("no resolvable session")
	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrRequestNotFound = fmt.Errorf("friend request not found")
	ErrWorkerPanic     = fmt.Errorf("worker panic")
)
