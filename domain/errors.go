package domain

import "errors"

// Error kinds surfaced by the roast pipeline. The API layer maps them to
// HTTP status codes with errors.Is.
var (
	ErrNoImage           = errors.New("no image provided (base64 JSON or multipart expected)")
	ErrInvalidImage      = errors.New("invalid image data")
	ErrBlocked           = errors.New("response blocked by safety filters")
	ErrParseFailure      = errors.New("failed to parse roast data")
	ErrMissingCredential = errors.New("GEMINI_API_KEY not configured")
	ErrUpstreamTimeout   = errors.New("upstream model timed out")
)

// PublicMessage returns the text shown to clients for err. Input errors are
// passed through, unknown errors are reported as internal.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoImage), errors.Is(err, ErrInvalidImage):
		return err.Error()
	case errors.Is(err, ErrBlocked):
		return "Response blocked by safety filters"
	case errors.Is(err, ErrParseFailure):
		return "Failed to parse roast data"
	case errors.Is(err, ErrMissingCredential):
		return ErrMissingCredential.Error()
	case errors.Is(err, ErrUpstreamTimeout):
		return "Upstream model timed out"
	}
	return "Internal server error: " + err.Error()
}
