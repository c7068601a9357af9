// Package ai integrates the external text-generation collaborator used
// by the auto-responder. The collaborator is opaque to the pipeline:
// a system instruction and a prompt go in, generated text or an error
// comes out.
package ai

import "context"

type Request struct {
	System string
	Prompt string
}

// Generator produces dispatcher text for an escalation. Implementations
// must honour context cancellation; the worker bounds every call with a
// timeout.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
