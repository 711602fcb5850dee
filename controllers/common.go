package controllers

// ErrNoPermission is returned when a non-admin user hits an admin endpoint.
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}
