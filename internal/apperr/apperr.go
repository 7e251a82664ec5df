package apperr

import (
	"errors"
	"fmt"
)

const (
	CodeValidation     = "VALIDATION"
	CodeEmptyProfile   = "EMPTY_PROFILE"
	CodeScrapingFailed = "SCRAPING_FAILED"
	CodeConnection     = "CONNECTION"
	CodeRemote         = "REMOTE"
	CodeAuth           = "AUTH"
	CodeNotFound       = "NOT_FOUND"
	CodeCDPUnavailable = "CDP_UNAVAILABLE"
	CodeTimeout        = "TIMEOUT"
)

// CodedError is a typed error used for stable API mapping and for labelling
// failures as they cross component boundaries.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

func New(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

func Validation(msg string) error {
	return &CodedError{Code: CodeValidation, Message: msg}
}

// CodeOf returns the code of the outermost CodedError in err's chain, or "".
func CodeOf(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
