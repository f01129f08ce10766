package database

import "errors"

// Sentinel errors returned by the entity repositories. HTTP controllers
// translate these into response statuses; raw gorm/driver errors never
// cross the repository boundary.
var (
	ErrNotFound            = errors.New("record not found")
	ErrEmailExists         = errors.New("email already registered")
	ErrBookUnavailable     = errors.New("no copies available")
	ErrLoanAlreadyReturned = errors.New("loan already returned")
)
