package types

import "fmt"

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// BadRequest builds a 400 CustomError with a formatted message.
func BadRequest(errType, format string, args ...interface{}) *CustomError {
	return &CustomError{
		Code:    400,
		Message: fmt.Sprintf(format, args...),
		Type:    errType,
	}
}

// NotFound builds a 404 CustomError with a formatted message.
func NotFound(errType, format string, args ...interface{}) *CustomError {
	return &CustomError{
		Code:    404,
		Message: fmt.Sprintf(format, args...),
		Type:    errType,
	}
}
