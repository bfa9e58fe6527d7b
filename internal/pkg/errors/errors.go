package errors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalid            = errors.New("invalid")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal")
	ErrStorage            = errors.New("storage")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrInvalidPermutation = errors.New("invalid permutation")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrUploadFailed       = errors.New("upload failed")
	ErrAIUnavailable      = errors.New("ai unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}
