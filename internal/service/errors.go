package service

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeOutOfRange   = "INDEX_OUT_OF_RANGE"
	CodePersistFault = "PERSIST_FAILED"
	CodeValidation   = "VALIDATION_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource string, id string) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("%s %s not found", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id),
	)
}

func NewOutOfRange(field string, index, length int) *BusinessError {
	return NewBusinessError(CodeOutOfRange,
		fmt.Sprintf("%s %d is outside the list of %d goals", field, index, length),
		ToDetail("field", field),
		ToDetail("index", index),
		ToDetail("length", length),
	)
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation,
		fmt.Sprintf("invalid value of field '%s': %s", field, reason),
		ToDetail("field", field),
		ToDetail("reason", reason),
	)
}

func NewPersistFailed(op string, err error) *BusinessError {
	busErr := NewBusinessError(CodePersistFault,
		fmt.Sprintf("%s applied but not persisted", op),
		ToDetail("operation", op),
	)
	busErr.Err = err
	return busErr
}

// IsCode reports whether err is a *BusinessError carrying code.
func IsCode(err error, code string) bool {
	var busErr *BusinessError
	if !errors.As(err, &busErr) {
		return false
	}
	return busErr.Code == code
}
