package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrInternal
	ErrStorage
	ErrIndexOutOfRange
	ErrInvalidPermutation
	ErrTypeMismatch
	ErrInvalidFile
	ErrUploadFailed
	ErrAIUnavailable
)
