package generation

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RetryPolicy bounds how hard the generator leans on the primary backend
// before failing over.
type RetryPolicy struct {
	// MaxRetries is the number of attempts against the primary.
	MaxRetries int
	// BackoffBase is the base delay; attempt k sleeps BackoffBase * k.
	BackoffBase time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BackoffBase: 1500 * time.Millisecond}
}

// Resilient drives an ordered list of backends: the primary is retried with
// linear backoff on transient failures, then the fallbacks each get one
// shot. Stateless across calls.
type Resilient struct {
	backends []Backend
	policy   RetryPolicy

	sleep func(time.Duration) // swappable in tests
}

func NewResilient(policy RetryPolicy, backends ...Backend) (*Resilient, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("at least one generation backend required")
	}
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = DefaultRetryPolicy().MaxRetries
	}
	if policy.BackoffBase <= 0 {
		policy.BackoffBase = DefaultRetryPolicy().BackoffBase
	}
	return &Resilient{backends: backends, policy: policy, sleep: time.Sleep}, nil
}

// Invoke generates the complete text for a prompt, retrying and failing over
// per the policy. The last error is surfaced once all backends are exhausted.
func (g *Resilient) Invoke(ctx context.Context, prompt string) (string, error) {
	primary := g.backends[0]

	var lastErr error
	for attempt := 1; attempt <= g.policy.MaxRetries; attempt++ {
		text, err := primary.Invoke(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !IsTransient(err) {
			// terminal: retrying cannot help
			log.Printf("generator: %s failed terminally: %v", primary.Name(), err)
			break
		}
		if attempt == g.policy.MaxRetries {
			break
		}
		delay := g.policy.BackoffBase * time.Duration(attempt)
		log.Printf("generator: %s transient failure (attempt %d/%d), retrying in %v: %v",
			primary.Name(), attempt, g.policy.MaxRetries, delay, err)
		g.sleep(delay)
	}

	failed := primary
	for _, fb := range g.backends[1:] {
		if skipSharedCredential(lastErr, failed, fb) {
			log.Printf("generator: skipping %s, it shares the failing credential of %s", fb.Name(), failed.Name())
			continue
		}
		log.Printf("generator: falling back to %s", fb.Name())
		text, err := fb.Invoke(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		failed = fb
	}

	return "", lastErr
}

// Stream streams from the primary; if its stream fails to even start, the
// fallbacks are tried in order. Once a stream has begun yielding chunks the
// generator never switches providers mid-stream.
func (g *Resilient) Stream(ctx context.Context, prompt string) (<-chan Chunk, error) {
	var lastErr error
	failed := Backend(nil)

	for i, backend := range g.backends {
		if i > 0 && skipSharedCredential(lastErr, failed, backend) {
			log.Printf("generator: skipping %s, it shares the failing credential of %s", backend.Name(), failed.Name())
			continue
		}
		ch, err := backend.Stream(ctx, prompt)
		if err == nil {
			return ch, nil
		}
		log.Printf("generator: %s stream failed to start: %v", backend.Name(), err)
		lastErr = err
		failed = backend
	}

	return nil, lastErr
}

// skipSharedCredential reports whether a fallback should be skipped because
// the failure was configuration-class and the fallback authenticates with
// the same credential that just failed. Conservative: unknown or distinct
// credentials always attempt the fallback.
func skipSharedCredential(lastErr error, failed, fallback Backend) bool {
	if lastErr == nil || failed == nil || !IsConfigError(lastErr) {
		return false
	}
	fp := failed.CredentialFingerprint()
	return fp != "" && fp == fallback.CredentialFingerprint()
}
