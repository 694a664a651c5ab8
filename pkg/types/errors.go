package types

import "errors"

var (
	// ErrInsufficientInput indicates input text shorter than the minimum length.
	ErrInsufficientInput = errors.New("insufficient input")

	// ErrModelUnavailable indicates the language-model backend is unreachable
	// or kept failing after the retry budget was spent.
	ErrModelUnavailable = errors.New("language model unavailable")

	// ErrMalformedModelOutput indicates the model returned text that is not a
	// JSON object. It is recovered locally and never returned to callers.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrSchemaValidation indicates the model output parsed as JSON but has
	// missing, mistyped or out-of-range fields.
	ErrSchemaValidation = errors.New("schema validation failed")

	// ErrMemoryWrite indicates a memory entry could not be persisted. It is
	// logged and swallowed.
	ErrMemoryWrite = errors.New("memory write failed")

	// ErrMemoryUnavailable indicates a memory search could not embed the
	// query or read the index.
	ErrMemoryUnavailable = errors.New("memory unavailable")

	// ErrUnsupportedDocument indicates an uploaded file type with no extractor.
	ErrUnsupportedDocument = errors.New("unsupported document format")
)
