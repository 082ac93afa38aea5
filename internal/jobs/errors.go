package jobs

import "errors"

var (
	ErrNotFound        = errors.New("job not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotProcessing   = errors.New("job is no longer processing")
	ErrDispatchFailed  = errors.New("job dispatch failed")
	errMissingDeps     = errors.New("job dependencies not configured")
	errUnsupportedType = errors.New("unsupported job type")
)

const (
	ErrorCodeValidation     = "VALIDATION_ERROR"
	ErrorCodeInput          = "INPUT_ERROR"
	ErrorCodeLLMTimeout     = "LLM_TIMEOUT"
	ErrorCodeLLMUnavailable = "LLM_UNAVAILABLE"
	ErrorCodeLLMOutput      = "LLM_OUTPUT_INVALID"
	ErrorCodeStorage        = "STORAGE_ERROR"
	ErrorCodeDispatch       = "DISPATCH_ERROR"
	ErrorCodeInternal       = "INTERNAL_ERROR"
)
