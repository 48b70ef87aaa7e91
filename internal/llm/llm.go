// Package llm wraps the remote text-generation API used for code generation.
package llm

import "context"

// TextGenerator produces text from a prompt. Implementations call a remote
// model; failures should be mapped to apperr.ErrUnavailable by callers that
// surface them over HTTP.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
