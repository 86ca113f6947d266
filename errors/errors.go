package errors

import "fmt"

var (
	ErrNameTaken   = fmt.Errorf("nickname already taken")
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrNotFound    = fmt.Errorf("user not found")
)
