package analysis

import "errors"

// ErrMalformedResult is returned when the model output does not match the result schema.
var ErrMalformedResult = errors.New("malformed analysis result")
