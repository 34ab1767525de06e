package generation

import (
	"context"
	"strings"
)

// Chunk is one increment of a streamed generation. A chunk with a non-nil
// Err terminates the stream.
type Chunk struct {
	Text string
	Err  error
}

// Backend is one remote text-generation service. Errors returned by Invoke
// and Stream are already classified into the generic taxonomy (ConfigError /
// TransientError / terminal); callers never see provider-native error types.
type Backend interface {
	Name() string

	// Invoke generates the complete text for a prompt in one blocking call.
	Invoke(ctx context.Context, prompt string) (string, error)

	// Stream generates text incrementally. The concatenation of all chunk
	// texts equals what Invoke would have returned for the same prompt.
	// A construction-time failure is returned directly; once the channel is
	// handed out, failures arrive as a chunk Err.
	Stream(ctx context.Context, prompt string) (<-chan Chunk, error)

	// CredentialFingerprint identifies the credential this backend
	// authenticates with, so the generator can tell when two backends would
	// fail the same way. Empty when the backend has no credential.
	CredentialFingerprint() string

	// Available reports whether this backend's prerequisites are satisfied,
	// with a human-readable reason when they are not.
	Available() (bool, string)
}

// Collect drains a chunk stream into the complete text. The first chunk
// error aborts and is returned; a partial answer is never presented as
// complete.
func Collect(ch <-chan Chunk) (string, error) {
	var b strings.Builder
	for chunk := range ch {
		if chunk.Err != nil {
			return "", chunk.Err
		}
		b.WriteString(chunk.Text)
	}
	return strings.TrimSpace(b.String()), nil
}
