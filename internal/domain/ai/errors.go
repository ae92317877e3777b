package ai

import "errors"

// ErrRateLimited indicates the AI provider returned a rate-limit error (HTTP 429).
// Callers surface it as "retry later", not as a hard failure.
var ErrRateLimited = errors.New("ai rate limited")

// ErrEmptyResponse indicates the provider answered without any content.
var ErrEmptyResponse = errors.New("ai returned an empty response")

// ErrCompletionFailed wraps every other upstream failure, deadline included.
var ErrCompletionFailed = errors.New("ai completion failed")
