package services

import "fmt"

// Service errors
var (
	ErrNoTablesSpecified = &ServiceError{Message: "no tables specified"}
	ErrInvalidWeek       = &ServiceError{Message: "week must be a positive number"}
	ErrInvalidOutcome    = &ServiceError{Message: "result must be 1, X or 2"}
	ErrInvalidFixture    = &ServiceError{Message: "fixture needs an id, a week and a kickoff"}
	ErrNoFixturesGiven   = &ServiceError{Message: "no fixtures to import"}
	ErrUserRequired      = &ServiceError{Message: "user id is required"}
	ErrInvalidMode       = &ServiceError{Message: "mode must be live or test"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}
