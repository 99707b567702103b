package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrAssetNotReady is returned when a remote asset did not become ACTIVE
// within the allowed poll attempts or before the context ended.
var ErrAssetNotReady = errors.New("timed out waiting for remote asset readiness")

// ErrAssetFailed means the provider reported the asset as FAILED.
var ErrAssetFailed = errors.New("remote asset processing failed")

// ErrEmptyResponse means the generation response had no candidate, content or text part.
var ErrEmptyResponse = errors.New("ai response has no text")
