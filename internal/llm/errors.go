package llm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModelNotFound is returned when the model server lists no models
	ErrModelNotFound = errors.New("local LLM model not found")

	// ErrTransport wraps failures talking to the model server
	ErrTransport = errors.New("LLM query failed")

	// ErrModelInternal is matched by *ModelError
	ErrModelInternal = errors.New("LLM reported an internal error")

	// ErrExtraction is matched by *ExtractionError
	ErrExtraction = errors.New("invalid JSON could not be extracted")

	// ErrDecode wraps JSON decoding and validation failures
	ErrDecode = errors.New("LLM response processing failed")

	// ErrTimedOut is reported when a query exceeds its time budget
	ErrTimedOut = errors.New("LLM query timed out")
)

// ModelError is an error reported by the model server itself
type ModelError struct {
	Message string
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%s: %s", ErrModelInternal, e.Message)
}

func (e *ModelError) Is(target error) bool {
	return target == ErrModelInternal
}

// ExtractionError carries the raw model output no JSON object was found in
type ExtractionError struct {
	Raw string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExtraction, e.Raw)
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// Cause returns a short description of err suitable for showing to a user
func Cause(err error) string {
	if err == nil {
		return ""
	}

	var modelErr *ModelError
	var extractErr *ExtractionError
	switch {
	case errors.As(err, &modelErr):
		return modelErr.Message
	case errors.As(err, &extractErr):
		return extractErr.Raw
	case errors.Is(err, ErrModelNotFound):
		return "Local LLM model not found"
	case errors.Is(err, ErrTimedOut):
		return "LLM query timed out"
	}

	for _, sentinel := range []error{ErrTransport, ErrDecode} {
		if !errors.Is(err, sentinel) {
			continue
		}
		if _, detail, found := strings.Cut(err.Error(), sentinel.Error()+": "); found {
			return detail
		}
	}
	return err.Error()
}
