package llm

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrRateLimited indicates the provider rejected the call for quota reasons.
// Callers retry these with backoff; all other provider errors surface as-is.
var ErrRateLimited = errors.New("llm: rate limited")

// ErrEmptyInput indicates an empty prompt or text was passed to the client.
// The affected item is rejected; batches containing other items continue.
var ErrEmptyInput = errors.New("llm: empty input")

// classifyProviderError maps provider transport errors onto the package
// sentinels so callers can distinguish retriable rate limits from hard
// failures.
func classifyProviderError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	return fmt.Errorf("failed to generate content: %w", err)
}
