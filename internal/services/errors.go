package services

// Service errors
var (
	ErrInvalidAccessCode = &ServiceError{Message: "access code is not recognized"}
	ErrNoItemsSupplied   = &ServiceError{Message: "no payment items supplied"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
